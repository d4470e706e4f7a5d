/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: equivalence.go
Description: Equivalence oracles. Testing oracles approximate equivalence by
comparing the hypothesis with the target on generated words; the simulator
oracle decides it exactly against a known machine. Words are checked in
batches whose members run concurrently, and the earliest counterexample of a
batch wins so results do not depend on scheduling.
*/

package oracle

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Predictor computes the hypothesis answer for a word
type Predictor[I comparable, M any, D any] func(hypothesis M, word automata.Word[I]) (D, error)

// DFAPredictor predicts acceptance with a concrete acceptor
func DFAPredictor[I comparable]() Predictor[I, *automata.DFA[I], bool] {
	return func(h *automata.DFA[I], w automata.Word[I]) (bool, error) {
		return h.Accepts(w)
	}
}

// MealyPredictor predicts the output word with a concrete transducer
func MealyPredictor[I comparable, O comparable]() Predictor[I, *automata.Mealy[I, O], automata.Word[O]] {
	return func(h *automata.Mealy[I, O], w automata.Word[I]) (automata.Word[O], error) {
		return h.Output(w)
	}
}

// BoolEqual compares acceptor answers
func BoolEqual(a, b bool) bool { return a == b }

// WordEqual compares transducer answers
func WordEqual[O comparable](a, b automata.Word[O]) bool { return a.Equal(b) }

// tester compares hypothesis and target on words
type tester[I comparable, M any, D any] struct {
	target    interfaces.MembershipOracle[I, D]
	predict   Predictor[I, M, D]
	equal     func(a, b D) bool
	workers   int
	collector *monitoring.MetricsCollector
	logger    *logrus.Logger
}

func (t *tester[I, M, D]) differs(ctx context.Context, h M, w automata.Word[I]) (bool, error) {
	want, err := t.target.Answer(ctx, automata.Epsilon[I](), w)
	if err != nil {
		return false, fmt.Errorf("failed to query target for %s: %w", w, err)
	}
	got, err := t.predict(h, w)
	if err != nil {
		return false, fmt.Errorf("failed to run hypothesis on %s: %w", w, err)
	}
	return !t.equal(want, got), nil
}

// checkBatch returns the first word of batch that separates h from the target
func (t *tester[I, M, D]) checkBatch(ctx context.Context, h M, batch []automata.Word[I]) (automata.Word[I], bool, error) {
	if t.workers <= 1 {
		for _, w := range batch {
			diff, err := t.differs(ctx, h, w)
			if err != nil {
				return nil, false, err
			}
			if diff {
				return w, true, nil
			}
		}
		return nil, false, nil
	}

	hits := make([]bool, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for i := range batch {
		i := i
		g.Go(func() error {
			diff, err := t.differs(gctx, h, batch[i])
			if err != nil {
				return err
			}
			hits[i] = diff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	for i, hit := range hits {
		if hit {
			return batch[i], true, nil
		}
	}
	return nil, false, nil
}

func (t *tester[I, M, D]) record(ce automata.Word[I], found bool) {
	if t.collector != nil {
		t.collector.RecordEquivalenceQuery(ce.Len(), found)
	}
	if found {
		t.logger.WithField("counterexample", ce.String()).Debug("Counterexample found")
	}
}

// RandomWordsConfig configures random testing
type RandomWordsConfig struct {
	Count     int   `json:"count"`
	MinLength int   `json:"min_length"`
	MaxLength int   `json:"max_length"`
	Seed      int64 `json:"seed"`
	Workers   int   `json:"workers"`
	BatchSize int   `json:"batch_size"`
}

// RandomWordsOracle tests the hypothesis on uniformly random words. With more
// than one worker the target oracle must be safe for concurrent use.
type RandomWordsOracle[I comparable, M any, D any] struct {
	tester[I, M, D]
	cfg RandomWordsConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomWordsOracle creates a random testing oracle
func NewRandomWordsOracle[I comparable, M any, D any](target interfaces.MembershipOracle[I, D], predict Predictor[I, M, D], equal func(a, b D) bool, cfg RandomWordsConfig) *RandomWordsOracle[I, M, D] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 64
	}
	if cfg.MaxLength < cfg.MinLength {
		cfg.MaxLength = cfg.MinLength
	}
	logger := logrus.New()
	return &RandomWordsOracle[I, M, D]{
		tester: tester[I, M, D]{target: target, predict: predict, equal: equal, workers: cfg.Workers, logger: logger},
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// SetLogger sets the logger
func (o *RandomWordsOracle[I, M, D]) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// SetCollector reports equivalence queries to a metrics collector
func (o *RandomWordsOracle[I, M, D]) SetCollector(collector *monitoring.MetricsCollector) {
	o.collector = collector
}

func (o *RandomWordsOracle[I, M, D]) word(alphabet []I) automata.Word[I] {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := o.cfg.MinLength
	if span := o.cfg.MaxLength - o.cfg.MinLength; span > 0 {
		n += o.rng.Intn(span + 1)
	}
	w := make(automata.Word[I], n)
	for i := range w {
		w[i] = alphabet[o.rng.Intn(len(alphabet))]
	}
	return w
}

// FindCounterexample tests up to Count random words
func (o *RandomWordsOracle[I, M, D]) FindCounterexample(ctx context.Context, hypothesis M, alphabet []I) (automata.Word[I], bool, error) {
	if len(alphabet) == 0 {
		return nil, false, nil
	}
	for done := 0; done < o.cfg.Count; {
		size := min(o.cfg.BatchSize, o.cfg.Count-done)
		batch := make([]automata.Word[I], size)
		for i := range batch {
			batch[i] = o.word(alphabet)
		}
		ce, found, err := o.checkBatch(ctx, hypothesis, batch)
		if err != nil {
			return nil, false, err
		}
		if found {
			o.record(ce, true)
			return ce, true, nil
		}
		done += size
	}
	o.record(nil, false)
	return nil, false, nil
}

// CompleteExplorationOracle tests every word up to a maximum length
type CompleteExplorationOracle[I comparable, M any, D any] struct {
	tester[I, M, D]
	minDepth  int
	maxDepth  int
	batchSize int
}

// NewCompleteExplorationOracle creates an exhaustive testing oracle for
// words of length minDepth..maxDepth in length-lexicographic order
func NewCompleteExplorationOracle[I comparable, M any, D any](target interfaces.MembershipOracle[I, D], predict Predictor[I, M, D], equal func(a, b D) bool, minDepth, maxDepth, workers int) *CompleteExplorationOracle[I, M, D] {
	return &CompleteExplorationOracle[I, M, D]{
		tester:    tester[I, M, D]{target: target, predict: predict, equal: equal, workers: workers, logger: logrus.New()},
		minDepth:  minDepth,
		maxDepth:  maxDepth,
		batchSize: 64,
	}
}

// SetLogger sets the logger
func (o *CompleteExplorationOracle[I, M, D]) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// SetCollector reports equivalence queries to a metrics collector
func (o *CompleteExplorationOracle[I, M, D]) SetCollector(collector *monitoring.MetricsCollector) {
	o.collector = collector
}

// FindCounterexample returns the shortest separating word within the bound
func (o *CompleteExplorationOracle[I, M, D]) FindCounterexample(ctx context.Context, hypothesis M, alphabet []I) (automata.Word[I], bool, error) {
	var batch []automata.Word[I]
	flush := func() (automata.Word[I], bool, error) {
		ce, found, err := o.checkBatch(ctx, hypothesis, batch)
		batch = batch[:0]
		return ce, found, err
	}
	for depth := o.minDepth; depth <= o.maxDepth; depth++ {
		if depth > 0 && len(alphabet) == 0 {
			break
		}
		digits := make([]int, depth)
		for {
			w := make(automata.Word[I], depth)
			for i, d := range digits {
				w[i] = alphabet[d]
			}
			batch = append(batch, w)
			if len(batch) == o.batchSize {
				ce, found, err := flush()
				if err != nil {
					return nil, false, err
				}
				if found {
					o.record(ce, true)
					return ce, true, nil
				}
			}
			if !increment(digits, len(alphabet)) {
				break
			}
		}
	}
	ce, found, err := flush()
	if err != nil {
		return nil, false, err
	}
	o.record(ce, found)
	return ce, found, nil
}

// increment advances digits as a base-n counter, most significant first
func increment(digits []int, n int) bool {
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i]++
		if digits[i] < n {
			return true
		}
		digits[i] = 0
	}
	return false
}

// DFASimulatorOracle decides equivalence exactly against a known acceptor
type DFASimulatorOracle[I comparable] struct {
	target *automata.DFA[I]
}

// NewDFASimulatorOracle creates an exact oracle for target
func NewDFASimulatorOracle[I comparable](target *automata.DFA[I]) *DFASimulatorOracle[I] {
	return &DFASimulatorOracle[I]{target: target}
}

// FindCounterexample returns a shortest separating word
func (o *DFASimulatorOracle[I]) FindCounterexample(_ context.Context, hypothesis *automata.DFA[I], alphabet []I) (automata.Word[I], bool, error) {
	w, found := automata.SeparatingWordDFA(o.target, hypothesis, alphabet)
	return w, found, nil
}

// MealySimulatorOracle decides equivalence exactly against a known transducer
type MealySimulatorOracle[I comparable, O comparable] struct {
	target *automata.Mealy[I, O]
}

// NewMealySimulatorOracle creates an exact oracle for target
func NewMealySimulatorOracle[I comparable, O comparable](target *automata.Mealy[I, O]) *MealySimulatorOracle[I, O] {
	return &MealySimulatorOracle[I, O]{target: target}
}

// FindCounterexample returns a shortest separating word
func (o *MealySimulatorOracle[I, O]) FindCounterexample(_ context.Context, hypothesis *automata.Mealy[I, O], alphabet []I) (automata.Word[I], bool, error) {
	w, found := automata.SeparatingWordMealy(o.target, hypothesis, alphabet)
	return w, found, nil
}
