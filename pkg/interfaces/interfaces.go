/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for the Akaylee Learner. Defines the oracle and
system-under-learning contracts used across packages to break import cycles
between the learner core, the oracles and the target drivers.
*/

package interfaces

import (
	"context"

	"github.com/kleascm/akaylee-learner/pkg/automata"
)

// MembershipOracle answers a single membership query.
//
// For acceptors D is bool and reports whether prefix·suffix is accepted.
// For transducers D is automata.Word[O] holding the outputs produced while
// reading suffix after prefix, so the result has the length of suffix.
type MembershipOracle[I comparable, D any] interface {
	Answer(ctx context.Context, prefix, suffix automata.Word[I]) (D, error)
}

// MembershipOracleFunc adapts a function to MembershipOracle
type MembershipOracleFunc[I comparable, D any] func(ctx context.Context, prefix, suffix automata.Word[I]) (D, error)

// Answer calls f(ctx, prefix, suffix)
func (f MembershipOracleFunc[I, D]) Answer(ctx context.Context, prefix, suffix automata.Word[I]) (D, error) {
	return f(ctx, prefix, suffix)
}

// EquivalenceOracle searches for a word on which the hypothesis and the
// target disagree. M is the concrete hypothesis form (DFA, Mealy).
type EquivalenceOracle[I comparable, M any] interface {
	FindCounterexample(ctx context.Context, hypothesis M, alphabet []I) (automata.Word[I], bool, error)
}

// SUL is a resettable system under learning driven one symbol at a time
type SUL[I comparable, O any] interface {
	// Pre resets the system before a query
	Pre(ctx context.Context) error
	// Step feeds one input and returns the observed output
	Step(ctx context.Context, input I) (O, error)
	// Post releases per-query resources; always called after Pre succeeded
	Post(ctx context.Context) error
}

// TraceRunner decides acceptance of complete words
type TraceRunner[I comparable] interface {
	Accepts(ctx context.Context, word automata.Word[I]) (bool, error)
}

// TraceRunnerFunc adapts a function to TraceRunner
type TraceRunnerFunc[I comparable] func(ctx context.Context, word automata.Word[I]) (bool, error)

// Accepts calls f(ctx, word)
func (f TraceRunnerFunc[I]) Accepts(ctx context.Context, word automata.Word[I]) (bool, error) {
	return f(ctx, word)
}
