/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: store.go
Description: Persistent query cache backends. Answered membership queries are
stored under a key derived from the query so that repeated learning runs
against the same target can skip the system under learning entirely.
*/

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
)

// ErrMiss is returned by Get when the key is not cached
var ErrMiss = errors.New("cache miss")

// Store is a byte-oriented key/value cache
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Len(ctx context.Context) (int, error)
	Close() error
}

type queryKey[I comparable] struct {
	Prefix automata.Word[I] `json:"p"`
	Suffix automata.Word[I] `json:"s"`
}

// QueryKey derives the cache key of a membership query. The split point is
// part of the key since transducer answers depend on it.
func QueryKey[I comparable](namespace string, prefix, suffix automata.Word[I]) (string, error) {
	data, err := json.Marshal(queryKey[I]{Prefix: prefix, Suffix: suffix})
	if err != nil {
		return "", fmt.Errorf("failed to marshal query: %w", err)
	}
	sum := sha256.Sum256(data)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}
