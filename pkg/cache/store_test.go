/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store_test.go
Description: Contract tests run against every cache backend.
*/

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/cache"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStoreContract(t *testing.T, store cache.Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, store.Put(ctx, "k1", []byte("true")))
	require.NoError(t, store.Put(ctx, "k2", []byte(`[0,1]`)))
	require.NoError(t, store.Put(ctx, "k1", []byte("false")))

	v, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("false"), v)

	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore(t *testing.T) {
	store := cache.NewMemoryStore()
	defer store.Close()
	runStoreContract(t, store)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := cache.NewRedisStoreFromClient(client, cache.WithPrefix("test:"), cache.WithTTL(time.Hour))
	defer store.Close()
	runStoreContract(t, store)

	assert.True(t, mr.Exists("test:k1"))
	assert.Equal(t, time.Hour, mr.TTL("test:k1"))
}

func TestRedisStoreExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	store := cache.NewRedisStore(mr.Addr(), "", 0, cache.WithTTL(time.Minute))
	defer store.Close()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k", []byte("1")))
	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestBadgerStore(t *testing.T) {
	store, err := cache.OpenInMemoryBadgerStore()
	require.NoError(t, err)
	defer store.Close()
	runStoreContract(t, store)
}

func TestBadgerStorePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := cache.OpenBadgerStore(cache.BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "k", []byte("1")))
	require.NoError(t, store.Close())

	store, err = cache.OpenBadgerStore(cache.BadgerConfig{Path: dir})
	require.NoError(t, err)
	defer store.Close()
	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	_, err = cache.OpenBadgerStore(cache.BadgerConfig{})
	assert.Error(t, err)
}

func TestQueryKeyDependsOnSplit(t *testing.T) {
	a, err := cache.QueryKey("ns", automata.WordOf("a"), automata.WordOf("b"))
	require.NoError(t, err)
	b, err := cache.QueryKey("ns", automata.WordOf("a", "b"), automata.Epsilon[string]())
	require.NoError(t, err)
	c, err := cache.QueryKey("ns", automata.WordOf("a"), automata.WordOf("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
	assert.Contains(t, a, "ns:")
}
