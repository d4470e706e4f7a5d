/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: counter.go
Description: Counting membership oracle.
*/

package oracle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
)

// CounterOracle counts the queries and symbols passing through it
type CounterOracle[I comparable, D any] struct {
	delegate  interfaces.MembershipOracle[I, D]
	collector *monitoring.MetricsCollector
	queries   int64
	symbols   int64
}

// NewCounterOracle wraps delegate; collector may be nil
func NewCounterOracle[I comparable, D any](delegate interfaces.MembershipOracle[I, D], collector *monitoring.MetricsCollector) *CounterOracle[I, D] {
	return &CounterOracle[I, D]{delegate: delegate, collector: collector}
}

// Answer forwards the query and records it
func (c *CounterOracle[I, D]) Answer(ctx context.Context, prefix, suffix automata.Word[I]) (D, error) {
	start := time.Now()
	d, err := c.delegate.Answer(ctx, prefix, suffix)
	n := prefix.Len() + suffix.Len()
	atomic.AddInt64(&c.queries, 1)
	atomic.AddInt64(&c.symbols, int64(n))
	if c.collector != nil {
		c.collector.RecordQuery(n, time.Since(start))
	}
	return d, err
}

// Queries returns the number of queries answered
func (c *CounterOracle[I, D]) Queries() int64 {
	return atomic.LoadInt64(&c.queries)
}

// Symbols returns the total query length
func (c *CounterOracle[I, D]) Symbols() int64 {
	return atomic.LoadInt64(&c.symbols)
}
