/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: domain.go
Description: Output domains of the learner. A domain fixes, once at construction,
how query outputs are compared, whether decision tree nodes use fixed binary or
dynamically keyed children, which suffixes check local consistency, and how the
hypothesis predicts the output of a suffix. Only the acceptor and transducer
variants exist; the interface cannot be implemented outside this package.
*/

package learner

import (
	"context"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
)

// DomainKind identifies an output domain variant
type DomainKind int

const (
	// KindAcceptor learns acceptors with boolean outputs
	KindAcceptor DomainKind = iota
	// KindTransducer learns Mealy machines with word outputs
	KindTransducer
)

// String returns the domain name
func (k DomainKind) String() string {
	switch k {
	case KindAcceptor:
		return "acceptor"
	case KindTransducer:
		return "transducer"
	default:
		return fmt.Sprintf("DomainKind(%d)", int(k))
	}
}

// hypothesisWalker is the part of the learner a domain needs for predictions
type hypothesisWalker[I comparable, D any] interface {
	successor(ctx context.Context, state int, a I) (int, error)
	probe(ctx context.Context, state int, suffix automata.Word[I]) (D, error)
}

// Domain is the output domain of a learner
type Domain[I comparable, D any] interface {
	Kind() DomainKind
	// MaxSearchIndex is the upper bound of counterexample analysis for a
	// counterexample of length n
	MaxSearchIndex(n int) int

	equal(a, b D) bool
	binary() bool
	branch(d D) int
	// rootDiscriminator is the suffix of an initial inner node, if any
	rootDiscriminator() (automata.Word[I], bool)
	localSuffixes(symbols []I) []automata.Word[I]
	predict(ctx context.Context, h hypothesisWalker[I, D], state int, suffix automata.Word[I]) (D, error)
}

type acceptor[I comparable] struct{}

// Acceptor returns the boolean output domain
func Acceptor[I comparable]() Domain[I, bool] {
	return acceptor[I]{}
}

func (acceptor[I]) Kind() DomainKind { return KindAcceptor }

func (acceptor[I]) MaxSearchIndex(n int) int { return n }

func (acceptor[I]) equal(a, b bool) bool { return a == b }

func (acceptor[I]) binary() bool { return true }

func (acceptor[I]) branch(d bool) int {
	if d {
		return 1
	}
	return 0
}

func (acceptor[I]) rootDiscriminator() (automata.Word[I], bool) {
	return automata.Epsilon[I](), true
}

func (acceptor[I]) localSuffixes([]I) []automata.Word[I] {
	return []automata.Word[I]{automata.Epsilon[I]()}
}

func (acceptor[I]) predict(ctx context.Context, h hypothesisWalker[I, bool], state int, suffix automata.Word[I]) (bool, error) {
	var err error
	for _, a := range suffix {
		if state, err = h.successor(ctx, state, a); err != nil {
			return false, err
		}
	}
	return h.probe(ctx, state, automata.Epsilon[I]())
}

type transducer[I comparable, O comparable] struct{}

// Transducer returns the Mealy output domain. Answers are the outputs of the
// suffix only, so the first suffix symbol's output belongs to the transition
// into the probed state and MaxSearchIndex is n-1.
func Transducer[I comparable, O comparable]() Domain[I, automata.Word[O]] {
	return transducer[I, O]{}
}

func (transducer[I, O]) Kind() DomainKind { return KindTransducer }

func (transducer[I, O]) MaxSearchIndex(n int) int { return n - 1 }

func (transducer[I, O]) equal(a, b automata.Word[O]) bool { return a.Equal(b) }

func (transducer[I, O]) binary() bool { return false }

func (transducer[I, O]) branch(automata.Word[O]) int { return -1 }

func (transducer[I, O]) rootDiscriminator() (automata.Word[I], bool) { return nil, false }

func (transducer[I, O]) localSuffixes(symbols []I) []automata.Word[I] {
	out := make([]automata.Word[I], len(symbols))
	for i, a := range symbols {
		out[i] = automata.WordOf(a)
	}
	return out
}

func (transducer[I, O]) predict(ctx context.Context, h hypothesisWalker[I, automata.Word[O]], state int, suffix automata.Word[I]) (automata.Word[O], error) {
	out := make(automata.Word[O], 0, len(suffix))
	var err error
	for i, a := range suffix {
		if i > 0 {
			if state, err = h.successor(ctx, state, suffix[i-1]); err != nil {
				return nil, err
			}
		}
		step, err := h.probe(ctx, state, automata.WordOf(a))
		if err != nil {
			return nil, err
		}
		if len(step) != 1 {
			return nil, fmt.Errorf("%w: expected one output for symbol %v, got %d", ErrInconsistentOracle, a, len(step))
		}
		out = append(out, step[0])
	}
	return out, nil
}
