/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Caching membership oracle backed by a persistent store.
*/

package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/cache"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/sirupsen/logrus"
)

// CacheStats reports cache effectiveness
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}

// CacheOracle answers from a store before asking its delegate
type CacheOracle[I comparable, D any] struct {
	delegate  interfaces.MembershipOracle[I, D]
	store     cache.Store
	namespace string
	collector *monitoring.MetricsCollector
	logger    *logrus.Logger

	hits   int64
	misses int64
}

// NewCacheOracle wraps delegate with store; namespace separates targets
// sharing one store
func NewCacheOracle[I comparable, D any](delegate interfaces.MembershipOracle[I, D], store cache.Store, namespace string, logger *logrus.Logger) *CacheOracle[I, D] {
	if logger == nil {
		logger = logrus.New()
	}
	return &CacheOracle[I, D]{delegate: delegate, store: store, namespace: namespace, logger: logger}
}

// SetCollector reports cache hits to a metrics collector
func (c *CacheOracle[I, D]) SetCollector(collector *monitoring.MetricsCollector) {
	c.collector = collector
}

// Answer returns a cached answer or asks the delegate and stores the result
func (c *CacheOracle[I, D]) Answer(ctx context.Context, prefix, suffix automata.Word[I]) (D, error) {
	var zero D
	key, err := cache.QueryKey(c.namespace, prefix, suffix)
	if err != nil {
		return zero, err
	}

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var d D
		if err := json.Unmarshal(data, &d); err != nil {
			return zero, fmt.Errorf("failed to decode cached answer: %w", err)
		}
		atomic.AddInt64(&c.hits, 1)
		if c.collector != nil {
			c.collector.RecordCacheHit()
		}
		return d, nil
	case !errors.Is(err, cache.ErrMiss):
		c.logger.WithError(err).Warn("Query cache read failed, asking target")
	}

	atomic.AddInt64(&c.misses, 1)
	d, err := c.delegate.Answer(ctx, prefix, suffix)
	if err != nil {
		return zero, err
	}
	encoded, err := json.Marshal(d)
	if err != nil {
		return zero, fmt.Errorf("failed to encode answer: %w", err)
	}
	if err := c.store.Put(ctx, key, encoded); err != nil {
		c.logger.WithError(err).Warn("Query cache write failed")
	}
	return d, nil
}

// Stats returns hit and miss counts
func (c *CacheOracle[I, D]) Stats() CacheStats {
	return CacheStats{Hits: atomic.LoadInt64(&c.hits), Misses: atomic.LoadInt64(&c.misses)}
}
