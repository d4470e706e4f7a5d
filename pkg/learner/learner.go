/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learner.go
Description: Learning orchestrator. Drives initialization, consistency closure,
counterexample-driven refinement and alphabet growth over the prefix tree and
decision tree it owns. A Learner is not safe for concurrent use; queries to the
membership oracle are issued one at a time and block until answered.
*/

package learner

import (
	"context"
	"fmt"
	"io"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

// Phase is the lifecycle phase of a learner
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseLearning
	PhaseStable
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseLearning:
		return "learning"
	case PhaseStable:
		return "stable"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats describes the size of the learner's data structures
type Stats struct {
	States        int `json:"states"`
	ShortPrefixes int `json:"short_prefixes"`
	PrefixNodes   int `json:"prefix_nodes"`
	Suffixes      int `json:"suffixes"`
	Queries       int `json:"queries"`
}

// Learner infers a hypothesis of type D outputs over input symbols I
type Learner[I comparable, D any] struct {
	alphabet *automata.Alphabet[I]
	symbols  []I
	known    map[I]struct{}
	// symbols whose extensions could not all be classified yet
	pending []I

	domain    Domain[I, D]
	ceq       interfaces.MembershipOracle[I, D]
	pt        *prefixTree[I]
	dt        *decisionTree[I, D]
	witnesses witnessStack[I, D]
	phase     Phase
	logger    *logrus.Logger
}

// New creates a learner. mq answers the learner's own queries, ceq answers
// counterexample witnesses; a nil ceq reuses mq. The alphabet is shared and
// may grow, but only symbols passed to AddAlphabetSymbol after start are used.
func New[I comparable, D any](alphabet *automata.Alphabet[I], domain Domain[I, D], mq, ceq interfaces.MembershipOracle[I, D]) *Learner[I, D] {
	if ceq == nil {
		ceq = mq
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	pt := newPrefixTree[I]()
	return &Learner[I, D]{
		alphabet: alphabet,
		known:    make(map[I]struct{}),
		domain:   domain,
		ceq:      ceq,
		pt:       pt,
		dt:       newDecisionTree(domain, mq, pt, logger),
		logger:   logger,
	}
}

// SetLogger replaces the discard logger
func (l *Learner[I, D]) SetLogger(logger *logrus.Logger) {
	if logger == nil {
		return
	}
	l.logger = logger
	l.dt.logger = logger
}

// Phase returns the current lifecycle phase
func (l *Learner[I, D]) Phase() Phase {
	return l.phase
}

// Domain returns the output domain
func (l *Learner[I, D]) Domain() Domain[I, D] {
	return l.domain
}

// Symbols returns the symbols the learner currently works with
func (l *Learner[I, D]) Symbols() []I {
	out := make([]I, len(l.symbols))
	copy(out, l.symbols)
	return out
}

// Stats returns data structure sizes
func (l *Learner[I, D]) Stats() Stats {
	shorts := 0
	for _, leaf := range l.dt.leaves {
		shorts += len(l.dt.nodes[leaf].short)
	}
	return Stats{
		States:        len(l.dt.leaves),
		ShortPrefixes: shorts,
		PrefixNodes:   l.pt.size(),
		Suffixes:      l.dt.suffixes.size(),
		Queries:       len(l.dt.memo),
	}
}

// StartLearning classifies the empty word and closes the initial hypothesis
func (l *Learner[I, D]) StartLearning(ctx context.Context) error {
	if l.phase != PhaseNotStarted {
		return ErrAlreadyStarted
	}
	for _, a := range l.alphabet.Symbols() {
		l.addKnown(a)
	}
	l.pt.nodes[rootPrefix].short = true
	if _, err := l.dt.sift(ctx, rootPrefix); err != nil {
		return fmt.Errorf("failed to classify the initial state: %w", err)
	}
	l.phase = PhaseLearning
	if err := l.saturate(ctx); err != nil {
		return err
	}
	l.logger.WithFields(logrus.Fields{
		"states":  len(l.dt.leaves),
		"symbols": len(l.symbols),
	}).Debug("Initial hypothesis constructed")
	return l.checkInvariants(ctx)
}

// MakeConsistent runs a single consistency round and reports whether the
// hypothesis changed. Callers normally rely on the public operations, which
// already run it to saturation.
func (l *Learner[I, D]) MakeConsistent(ctx context.Context) (bool, error) {
	if l.phase == PhaseNotStarted {
		return false, ErrNotStarted
	}
	if err := l.completePending(ctx); err != nil {
		return false, err
	}
	return l.dt.makeConsistent(ctx, l.symbols)
}

// IsConsistent reports whether MakeConsistent would change nothing
func (l *Learner[I, D]) IsConsistent(ctx context.Context) (bool, error) {
	if l.phase == PhaseNotStarted {
		return false, ErrNotStarted
	}
	return l.dt.isConsistent(ctx, l.symbols)
}

func (l *Learner[I, D]) saturate(ctx context.Context) error {
	for {
		changed, err := l.dt.makeConsistent(ctx, l.symbols)
		if err != nil {
			return fmt.Errorf("failed to make hypothesis consistent: %w", err)
		}
		if !changed {
			return nil
		}
	}
}

// RefineHypothesis refines the hypothesis with a counterexample and reports
// whether anything changed. Stale witnesses are discarded silently.
func (l *Learner[I, D]) RefineHypothesis(ctx context.Context, ce automata.Word[I]) (bool, error) {
	if l.phase == PhaseNotStarted {
		return false, ErrNotStarted
	}
	for _, a := range ce {
		if _, ok := l.known[a]; !ok {
			return false, fmt.Errorf("%w: %v in %s", ErrUnknownSymbol, a, ce)
		}
	}
	if err := l.completePending(ctx); err != nil {
		return false, err
	}

	l.witnesses.push(&witness[I, D]{prefix: rootPrefix, suffix: automata.WordOf(ce...)})
	refined := false
	for !l.witnesses.empty() {
		w := l.witnesses.peek()
		isCE, err := l.isCounterexample(ctx, w)
		if err != nil {
			l.witnesses.reset()
			return refined, err
		}
		if !isCE {
			l.witnesses.pop()
			continue
		}
		word := l.pt.word(w.prefix).Concat(w.suffix)
		if err := l.analyze(ctx, word); err != nil {
			l.witnesses.reset()
			return refined, fmt.Errorf("failed to analyze counterexample %s: %w", word, err)
		}
		if err := l.saturate(ctx); err != nil {
			l.witnesses.reset()
			return refined, err
		}
		refined = true
	}

	if refined {
		l.phase = PhaseLearning
	} else {
		l.phase = PhaseStable
	}
	l.logger.WithFields(logrus.Fields{
		"counterexample": ce.String(),
		"refined":        refined,
		"states":         len(l.dt.leaves),
	}).Debug("Refinement finished")
	return refined, l.checkInvariants(ctx)
}

func (l *Learner[I, D]) isCounterexample(ctx context.Context, w *witness[I, D]) (bool, error) {
	prefix := l.pt.word(w.prefix)
	if !w.answered {
		out, err := l.ceq.Answer(ctx, prefix, w.suffix)
		if err != nil {
			return false, fmt.Errorf("failed to answer witness %s|%s: %w", prefix, w.suffix, err)
		}
		w.output = out
		w.answered = true
	}
	state, err := l.run(ctx, prefix)
	if err != nil {
		return false, err
	}
	predicted, err := l.domain.predict(ctx, l, state, w.suffix)
	if err != nil {
		return false, err
	}
	if known, ok := l.dt.cached(w.prefix, w.suffix); ok && !l.domain.equal(known, w.output) {
		return false, fmt.Errorf("%w: witness %s|%s answered %v, earlier %v",
			ErrInconsistentOracle, prefix, w.suffix, w.output, known)
	}
	return !l.domain.equal(predicted, w.output), nil
}

// AddAlphabetSymbol extends the hypothesis with a new input symbol. Symbols
// already known are ignored. The symbol is registered only once every state
// has a classified extension; after a failure it stays pending and is
// completed by the next mutating call.
func (l *Learner[I, D]) AddAlphabetSymbol(ctx context.Context, a I) error {
	if l.phase == PhaseNotStarted {
		return ErrNotStarted
	}
	if _, ok := l.known[a]; ok {
		return nil
	}
	if err := l.completePending(ctx); err != nil {
		return err
	}
	if _, ok := l.known[a]; ok {
		return nil
	}
	return l.addSymbol(ctx, a)
}

func (l *Learner[I, D]) completePending(ctx context.Context) error {
	for len(l.pending) > 0 {
		if err := l.addSymbol(ctx, l.pending[0]); err != nil {
			return err
		}
	}
	return nil
}

func (l *Learner[I, D]) setPending(a I, pending bool) {
	for i, p := range l.pending {
		if p == a {
			if !pending {
				l.pending = append(l.pending[:i], l.pending[i+1:]...)
			}
			return
		}
	}
	if pending {
		l.pending = append(l.pending, a)
	}
}

func (l *Learner[I, D]) addSymbol(ctx context.Context, a I) error {
	leaves := append([]int(nil), l.dt.leaves...)
	for _, leaf := range leaves {
		sp, err := l.dt.firstShort(leaf)
		if err != nil {
			return err
		}
		c := l.pt.child(sp, a)
		if l.pt.state(c) != noState {
			continue
		}
		if _, err := l.dt.sift(ctx, c); err != nil {
			l.setPending(a, true)
			return fmt.Errorf("failed to classify extension by %v: %w", a, err)
		}
	}
	l.alphabet.Add(a)
	l.addKnown(a)
	l.setPending(a, false)
	if err := l.saturate(ctx); err != nil {
		return err
	}
	l.phase = PhaseLearning
	l.logger.WithFields(logrus.Fields{
		"symbol": a,
		"states": len(l.dt.leaves),
	}).Debug("Added alphabet symbol")
	return l.checkInvariants(ctx)
}

func (l *Learner[I, D]) addKnown(a I) {
	if _, ok := l.known[a]; ok {
		return
	}
	l.known[a] = struct{}{}
	l.symbols = append(l.symbols, a)
}

func (l *Learner[I, D]) initial() (int, error) {
	s := l.pt.state(rootPrefix)
	if s == noState {
		return 0, fmt.Errorf("%w: empty word is not classified", ErrUnreachableState)
	}
	return s, nil
}

// successor follows a hypothesis transition through the first short prefix
func (l *Learner[I, D]) successor(_ context.Context, state int, a I) (int, error) {
	sp, err := l.dt.firstShort(state)
	if err != nil {
		return 0, err
	}
	c, ok := l.pt.existingChild(sp, a)
	if !ok || l.pt.state(c) == noState {
		return 0, fmt.Errorf("%w: no transition from state %d on %v", ErrUnreachableState, state, a)
	}
	return l.pt.state(c), nil
}

// probe answers suffix for the first short prefix of state. The empty
// suffix is read from the root labelling when the tree has one.
func (l *Learner[I, D]) probe(ctx context.Context, state int, suffix automata.Word[I]) (D, error) {
	if len(suffix) == 0 {
		if d, ok := l.dt.label(state); ok {
			return d, nil
		}
	}
	sp, err := l.dt.firstShort(state)
	if err != nil {
		var zero D
		return zero, err
	}
	return l.dt.lookup(ctx, sp, l.dt.suffixes.intern(suffix))
}

func (l *Learner[I, D]) run(ctx context.Context, w automata.Word[I]) (int, error) {
	s, err := l.initial()
	if err != nil {
		return 0, err
	}
	for _, a := range w {
		if s, err = l.successor(ctx, s, a); err != nil {
			return 0, err
		}
	}
	return s, nil
}

// checkInvariants verifies that every leaf has a representative and that the
// hypothesis reaches exactly the leaves of the decision tree
func (l *Learner[I, D]) checkInvariants(ctx context.Context) error {
	for _, leaf := range l.dt.leaves {
		if len(l.dt.nodes[leaf].short) == 0 {
			return fmt.Errorf("%w: state %d has no short prefix", ErrInvariant, leaf)
		}
	}
	order, err := l.reachable(ctx)
	if err != nil {
		return err
	}
	if len(order) != len(l.dt.leaves) {
		return fmt.Errorf("%w: %d reachable states for %d leaves", ErrInvariant, len(order), len(l.dt.leaves))
	}
	return nil
}

// reachable lists hypothesis states in breadth-first order from the initial state
func (l *Learner[I, D]) reachable(ctx context.Context) ([]int, error) {
	start, err := l.initial()
	if err != nil {
		return nil, err
	}
	order := []int{start}
	seen := map[int]bool{start: true}
	for head := 0; head < len(order); head++ {
		for _, a := range l.symbols {
			next, err := l.successor(ctx, order[head], a)
			if err != nil {
				return nil, err
			}
			if !seen[next] {
				seen[next] = true
				order = append(order, next)
			}
		}
	}
	return order, nil
}
