/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: hypothesis.go
Description: Read-only snapshot of the current hypothesis. States are numbered
in breadth-first order from the initial state. The snapshot is only meaningful
until the next mutating learner call. Adapters turn it into concrete acceptors
and transducers.
*/

package learner

import (
	"context"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
)

// Hypothesis is a snapshot of the learned model
type Hypothesis[I comparable, D any] struct {
	kind     DomainKind
	symbols  []I
	index    map[I]int
	succ     [][]int
	stateOut []D
	transOut [][]D
	access   []automata.Word[I]
}

// HypothesisModel builds a snapshot of the current hypothesis. Acceptance is
// read from the root labelling, transition outputs from answered queries
// where available. A transition output that is not exactly one symbol fails
// with ErrInconsistentOracle.
func (l *Learner[I, D]) HypothesisModel(ctx context.Context) (*Hypothesis[I, D], error) {
	if l.phase == PhaseNotStarted {
		return nil, ErrNotStarted
	}
	order, err := l.reachable(ctx)
	if err != nil {
		return nil, err
	}
	ids := make(map[int]int, len(order))
	for i, leaf := range order {
		ids[leaf] = i
	}

	h := &Hypothesis[I, D]{
		kind:    l.domain.Kind(),
		symbols: l.Symbols(),
		index:   make(map[I]int, len(l.symbols)),
		succ:    make([][]int, len(order)),
		access:  make([]automata.Word[I], len(order)),
	}
	for i, a := range h.symbols {
		h.index[a] = i
	}
	if h.kind == KindAcceptor {
		h.stateOut = make([]D, len(order))
	} else {
		h.transOut = make([][]D, len(order))
	}

	for i, leaf := range order {
		sp, err := l.dt.firstShort(leaf)
		if err != nil {
			return nil, err
		}
		h.access[i] = l.pt.word(sp)
		h.succ[i] = make([]int, len(h.symbols))
		for j, a := range h.symbols {
			next, err := l.successor(ctx, leaf, a)
			if err != nil {
				return nil, err
			}
			h.succ[i][j] = ids[next]
		}
		switch h.kind {
		case KindAcceptor:
			if h.stateOut[i], err = l.probe(ctx, leaf, automata.Epsilon[I]()); err != nil {
				return nil, fmt.Errorf("failed to determine output of state %d: %w", i, err)
			}
		case KindTransducer:
			h.transOut[i] = make([]D, len(h.symbols))
			for j, a := range h.symbols {
				if h.transOut[i][j], err = l.domain.predict(ctx, l, leaf, automata.WordOf(a)); err != nil {
					return nil, fmt.Errorf("failed to determine output of state %d on %v: %w", i, a, err)
				}
			}
		}
	}
	return h, nil
}

// Size returns the number of states
func (h *Hypothesis[I, D]) Size() int { return len(h.succ) }

// Initial returns the initial state
func (h *Hypothesis[I, D]) Initial() int { return 0 }

// Kind returns the output domain of the hypothesis
func (h *Hypothesis[I, D]) Kind() DomainKind { return h.kind }

// Alphabet returns the input symbols of the hypothesis
func (h *Hypothesis[I, D]) Alphabet() []I {
	out := make([]I, len(h.symbols))
	copy(out, h.symbols)
	return out
}

// Successor returns the target of the transition from state on a
func (h *Hypothesis[I, D]) Successor(state int, a I) (int, bool) {
	j, ok := h.index[a]
	if !ok || state < 0 || state >= len(h.succ) {
		return 0, false
	}
	return h.succ[state][j], true
}

// StateOutput returns the output of a state for acceptors
func (h *Hypothesis[I, D]) StateOutput(state int) (D, bool) {
	if h.stateOut == nil || state < 0 || state >= len(h.stateOut) {
		var zero D
		return zero, false
	}
	return h.stateOut[state], true
}

// TransitionOutput returns the output of a transition for transducers
func (h *Hypothesis[I, D]) TransitionOutput(state int, a I) (D, bool) {
	j, ok := h.index[a]
	if !ok || h.transOut == nil || state < 0 || state >= len(h.transOut) {
		var zero D
		return zero, false
	}
	return h.transOut[state][j], true
}

// AccessSequence returns the representative word of a state
func (h *Hypothesis[I, D]) AccessSequence(state int) automata.Word[I] {
	return automata.WordOf(h.access[state]...)
}

// ToDFA converts an acceptor hypothesis into a concrete DFA
func ToDFA[I comparable](h *Hypothesis[I, bool]) *automata.DFA[I] {
	d := automata.NewDFA[I]()
	for s := 0; s < h.Size(); s++ {
		d.AddState(h.stateOut[s])
	}
	for s := 0; s < h.Size(); s++ {
		for j, a := range h.symbols {
			_ = d.SetTransition(s, a, h.succ[s][j])
		}
	}
	return d
}

// ToMealy converts a transducer hypothesis into a concrete Mealy machine.
// HypothesisModel guarantees one output per transition.
func ToMealy[I comparable, O comparable](h *Hypothesis[I, automata.Word[O]]) *automata.Mealy[I, O] {
	m := automata.NewMealy[I, O]()
	for s := 0; s < h.Size(); s++ {
		m.AddState()
	}
	for s := 0; s < h.Size(); s++ {
		for j, a := range h.symbols {
			_ = m.SetTransition(s, a, h.transOut[s][j][0], h.succ[s][j])
		}
	}
	return m
}
