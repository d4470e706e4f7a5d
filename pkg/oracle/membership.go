/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: membership.go
Description: Membership oracles over systems under learning. A transducer query
resets the system, replays the prefix discarding outputs and collects the
outputs of the suffix. Stateful systems are serialized behind a mutex or spread
over a pool of independent instances for concurrent equivalence testing.
*/

package oracle

import (
	"context"
	"fmt"
	"sync"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
)

// SULOracle answers transducer queries on a system under learning
type SULOracle[I comparable, O comparable] struct {
	pool chan interfaces.SUL[I, O]
	mu   sync.Mutex
	one  interfaces.SUL[I, O]
}

// NewSULOracle answers queries one at a time on a single system
func NewSULOracle[I comparable, O comparable](sul interfaces.SUL[I, O]) *SULOracle[I, O] {
	return &SULOracle[I, O]{one: sul}
}

// NewPooledSULOracle answers up to size queries concurrently, each on its own
// system instance created by factory
func NewPooledSULOracle[I comparable, O comparable](size int, factory func() (interfaces.SUL[I, O], error)) (*SULOracle[I, O], error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	pool := make(chan interfaces.SUL[I, O], size)
	for i := 0; i < size; i++ {
		sul, err := factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create system instance %d: %w", i, err)
		}
		pool <- sul
	}
	return &SULOracle[I, O]{pool: pool}, nil
}

func (o *SULOracle[I, O]) acquire(ctx context.Context) (interfaces.SUL[I, O], func(), error) {
	if o.pool == nil {
		o.mu.Lock()
		return o.one, o.mu.Unlock, nil
	}
	select {
	case sul := <-o.pool:
		return sul, func() { o.pool <- sul }, nil
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

// Answer runs prefix·suffix and returns the outputs produced by suffix
func (o *SULOracle[I, O]) Answer(ctx context.Context, prefix, suffix automata.Word[I]) (out automata.Word[O], err error) {
	sul, release, err := o.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := sul.Pre(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset system: %w", err)
	}
	defer func() {
		if perr := sul.Post(ctx); perr != nil && err == nil {
			err = fmt.Errorf("failed to release system: %w", perr)
		}
	}()

	for _, a := range prefix {
		if _, err := sul.Step(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to step %v in prefix %s: %w", a, prefix, err)
		}
	}
	out = make(automata.Word[O], 0, len(suffix))
	for _, a := range suffix {
		y, err := sul.Step(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("failed to step %v in suffix %s: %w", a, suffix, err)
		}
		out = append(out, y)
	}
	return out, nil
}

// AcceptorOracle answers acceptor queries with a trace runner
type AcceptorOracle[I comparable] struct {
	runner interfaces.TraceRunner[I]
}

// NewAcceptorOracle creates an acceptor oracle
func NewAcceptorOracle[I comparable](runner interfaces.TraceRunner[I]) *AcceptorOracle[I] {
	return &AcceptorOracle[I]{runner: runner}
}

// Answer reports whether prefix·suffix is accepted
func (o *AcceptorOracle[I]) Answer(ctx context.Context, prefix, suffix automata.Word[I]) (bool, error) {
	return o.runner.Accepts(ctx, prefix.Concat(suffix))
}

// LastOutputAcceptor turns a transducer oracle into an acceptor oracle where
// a word is accepted when its last output equals accept. The empty word is
// accepted when emptyAccepted is set.
func LastOutputAcceptor[I comparable, O comparable](mq interfaces.MembershipOracle[I, automata.Word[O]], accept O, emptyAccepted bool) interfaces.MembershipOracle[I, bool] {
	return interfaces.MembershipOracleFunc[I, bool](func(ctx context.Context, prefix, suffix automata.Word[I]) (bool, error) {
		w := prefix.Concat(suffix)
		if len(w) == 0 {
			return emptyAccepted, nil
		}
		out, err := mq.Answer(ctx, w.Prefix(len(w)-1), w.Suffix(len(w)-1))
		if err != nil {
			return false, err
		}
		if len(out) != 1 {
			return false, fmt.Errorf("expected one output, got %d", len(out))
		}
		return out[0] == accept, nil
	})
}
