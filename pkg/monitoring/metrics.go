/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: Learning metrics for the Akaylee Learner. Tracks membership and
equivalence queries, counterexamples, refinement rounds and hypothesis size
with atomic counters for cheap snapshots, and mirrors them into Prometheus
collectors on a private registry for scraping.
*/

package monitoring

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// LearningStats is a point-in-time snapshot of the collector
type LearningStats struct {
	StartTime          time.Time     `json:"start_time"`
	Uptime             time.Duration `json:"uptime"`
	MembershipQueries  int64         `json:"membership_queries"`
	QuerySymbols       int64         `json:"query_symbols"`
	CacheHits          int64         `json:"cache_hits"`
	EquivalenceQueries int64         `json:"equivalence_queries"`
	Counterexamples    int64         `json:"counterexamples"`
	Rounds             int64         `json:"rounds"`
	HypothesisStates   int64         `json:"hypothesis_states"`
	HeapAlloc          uint64        `json:"heap_alloc"`
	GoRoutines         int           `json:"go_routines"`
}

// MetricsCollector aggregates learning metrics
type MetricsCollector struct {
	startTime time.Time
	logger    *logrus.Logger

	membershipQueries  int64
	querySymbols       int64
	cacheHits          int64
	equivalenceQueries int64
	counterexamples    int64
	rounds             int64
	hypothesisStates   int64

	registry      *prometheus.Registry
	queries       *prometheus.CounterVec
	symbols       prometheus.Counter
	eqQueries     prometheus.Counter
	ceLength      prometheus.Histogram
	roundsTotal   prometheus.Counter
	statesGauge   prometheus.Gauge
	queryDuration prometheus.Histogram

	interval time.Duration
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *logrus.Logger) *MetricsCollector {
	if logger == nil {
		logger = logrus.New()
	}
	mc := &MetricsCollector{
		startTime: time.Now(),
		logger:    logger,
		registry:  prometheus.NewRegistry(),
		interval:  10 * time.Second,
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "akaylee_membership_queries_total",
				Help: "Membership queries answered, by source.",
			},
			[]string{"source"},
		),
		symbols: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akaylee_query_symbols_total",
			Help: "Input symbols sent to the system under learning.",
		}),
		eqQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akaylee_equivalence_queries_total",
			Help: "Equivalence queries asked.",
		}),
		ceLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "akaylee_counterexample_length",
			Help:    "Length of counterexamples found.",
			Buckets: prometheus.LinearBuckets(1, 4, 10),
		}),
		roundsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "akaylee_rounds_total",
			Help: "Refinement rounds completed.",
		}),
		statesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "akaylee_hypothesis_states",
			Help: "States of the current hypothesis.",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "akaylee_query_duration_seconds",
			Help:    "Latency of membership queries reaching the target.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	mc.registry.MustRegister(mc.queries, mc.symbols, mc.eqQueries, mc.ceLength,
		mc.roundsTotal, mc.statesGauge, mc.queryDuration)
	return mc
}

// Registry returns the Prometheus registry holding the learning metrics
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	return mc.registry
}

// SetInterval sets how often Start logs a snapshot
func (mc *MetricsCollector) SetInterval(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.interval = d
}

// RecordQuery records a membership query answered by the target
func (mc *MetricsCollector) RecordQuery(symbols int, duration time.Duration) {
	atomic.AddInt64(&mc.membershipQueries, 1)
	atomic.AddInt64(&mc.querySymbols, int64(symbols))
	mc.queries.WithLabelValues("target").Inc()
	mc.symbols.Add(float64(symbols))
	mc.queryDuration.Observe(duration.Seconds())
}

// RecordCacheHit records a membership query answered from the cache
func (mc *MetricsCollector) RecordCacheHit() {
	atomic.AddInt64(&mc.cacheHits, 1)
	mc.queries.WithLabelValues("cache").Inc()
}

// RecordEquivalenceQuery records an equivalence query and its result
func (mc *MetricsCollector) RecordEquivalenceQuery(counterexampleLength int, found bool) {
	atomic.AddInt64(&mc.equivalenceQueries, 1)
	mc.eqQueries.Inc()
	if found {
		atomic.AddInt64(&mc.counterexamples, 1)
		mc.ceLength.Observe(float64(counterexampleLength))
	}
}

// RecordRound records a completed refinement round and the hypothesis size
func (mc *MetricsCollector) RecordRound(states int) {
	atomic.AddInt64(&mc.rounds, 1)
	mc.roundsTotal.Inc()
	mc.SetHypothesisStates(states)
}

// SetHypothesisStates updates the hypothesis size
func (mc *MetricsCollector) SetHypothesisStates(states int) {
	atomic.StoreInt64(&mc.hypothesisStates, int64(states))
	mc.statesGauge.Set(float64(states))
}

// Snapshot returns the current statistics
func (mc *MetricsCollector) Snapshot() LearningStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return LearningStats{
		StartTime:          mc.startTime,
		Uptime:             time.Since(mc.startTime),
		MembershipQueries:  atomic.LoadInt64(&mc.membershipQueries),
		QuerySymbols:       atomic.LoadInt64(&mc.querySymbols),
		CacheHits:          atomic.LoadInt64(&mc.cacheHits),
		EquivalenceQueries: atomic.LoadInt64(&mc.equivalenceQueries),
		Counterexamples:    atomic.LoadInt64(&mc.counterexamples),
		Rounds:             atomic.LoadInt64(&mc.rounds),
		HypothesisStates:   atomic.LoadInt64(&mc.hypothesisStates),
		HeapAlloc:          mem.HeapAlloc,
		GoRoutines:         runtime.NumGoroutine(),
	}
}

// Start begins periodic progress logging
func (mc *MetricsCollector) Start(ctx context.Context) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.running {
		return
	}
	mc.running = true
	mc.stopChan = make(chan struct{})
	mc.wg.Add(1)
	go mc.collectionLoop(ctx, mc.interval, mc.stopChan)
}

// Stop ends periodic logging
func (mc *MetricsCollector) Stop() {
	mc.mu.Lock()
	if !mc.running {
		mc.mu.Unlock()
		return
	}
	mc.running = false
	close(mc.stopChan)
	mc.mu.Unlock()
	mc.wg.Wait()
}

func (mc *MetricsCollector) collectionLoop(ctx context.Context, interval time.Duration, stop <-chan struct{}) {
	defer mc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			s := mc.Snapshot()
			mc.logger.WithFields(logrus.Fields{
				"queries":         s.MembershipQueries,
				"cache_hits":      s.CacheHits,
				"eq_queries":      s.EquivalenceQueries,
				"counterexamples": s.Counterexamples,
				"rounds":          s.Rounds,
				"states":          s.HypothesisStates,
			}).Info("Learning progress")
		}
	}
}
