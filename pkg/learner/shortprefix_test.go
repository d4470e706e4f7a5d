/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: shortprefix_test.go
Description: White-box tests for states represented by several short prefixes
and for the invariants that must hold after every public operation.
*/

package learner

import (
	"context"
	"errors"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countA(w automata.Word[string]) int {
	n := 0
	for _, a := range w {
		if a == "a" {
			n++
		}
	}
	return n
}

func TestMultipleShortPrefixesShareState(t *testing.T) {
	ctx := context.Background()
	// accepts words whose number of a's is divisible by three
	oracle := func(_ context.Context, p, s automata.Word[string]) (bool, error) {
		return countA(p.Concat(s))%3 == 0, nil
	}
	l := New[string, bool](automata.NewAlphabet("a", "b"), Acceptor[string](), memberFunc(oracle), nil)
	require.NoError(t, l.StartLearning(ctx))
	// acceptance alone separates ε from "a"
	require.Equal(t, 2, l.Stats().States)

	// "b" reaches the same state as the empty word
	b := l.pt.child(rootPrefix, "b")
	require.Equal(t, l.pt.state(rootPrefix), l.pt.state(b))
	l.dt.promote(b)
	require.NoError(t, l.saturate(ctx))
	require.NoError(t, l.checkInvariants(ctx))

	initial := l.pt.state(rootPrefix)
	assert.Equal(t, []int{rootPrefix, b}, l.dt.nodes[initial].short)
	assert.Equal(t, 2, l.Stats().States)

	// the counterexample only runs through the empty word's representative
	refined, err := l.RefineHypothesis(ctx, automata.WordOf("a", "a", "a"))
	require.NoError(t, err)
	assert.True(t, refined)
	assert.Equal(t, 3, l.Stats().States)
	assert.Equal(t, l.pt.state(rootPrefix), l.pt.state(b))
	assert.Contains(t, l.dt.nodes[l.pt.state(rootPrefix)].short, b)

	for _, w := range []automata.Word[string]{
		automata.WordOf("b", "a", "a", "a"),
		automata.WordOf("a", "b", "a", "b", "a"),
		automata.WordOf("b", "b"),
	} {
		refined, err := l.RefineHypothesis(ctx, w)
		require.NoError(t, err)
		assert.False(t, refined, "%s", w)
	}
	assert.Equal(t, 3, l.Stats().States)
}

func TestShortPrefixSoundness(t *testing.T) {
	ctx := context.Background()
	oracle := func(_ context.Context, p, s automata.Word[string]) (bool, error) {
		w := p.Concat(s)
		return countA(w)%2 == 0 && len(w)%3 != 1, nil
	}
	l := New[string, bool](automata.NewAlphabet("a", "b"), Acceptor[string](), memberFunc(oracle), nil)
	require.NoError(t, l.StartLearning(ctx))

	for _, ce := range []automata.Word[string]{
		automata.WordOf("a"),
		automata.WordOf("b"),
		automata.WordOf("a", "a", "b", "b"),
		automata.WordOf("b", "a", "b", "a", "b", "b", "a"),
	} {
		_, err := l.RefineHypothesis(ctx, ce)
		require.NoError(t, err)

		// shorts of one leaf agree on every discriminator above it and on ε
		for _, leaf := range l.dt.leaves {
			shorts := l.dt.nodes[leaf].short
			require.NotEmpty(t, shorts)
			for n := l.dt.nodes[leaf].parent; n >= 0; n = l.dt.nodes[n].parent {
				v := l.dt.suffixes.word(l.dt.nodes[n].disc)
				for _, u := range shorts[1:] {
					x, _ := oracle(ctx, l.pt.word(shorts[0]), v)
					y, _ := oracle(ctx, l.pt.word(u), v)
					assert.Equal(t, x, y)
				}
			}
			for _, u := range shorts {
				assert.Equal(t, leaf, l.pt.state(u))
			}
		}
		order, err := l.reachable(ctx)
		require.NoError(t, err)
		assert.Len(t, order, len(l.dt.leaves))
	}
}

func parityLearner(t *testing.T) *Learner[string, bool] {
	oracle := func(_ context.Context, p, s automata.Word[string]) (bool, error) {
		return countA(p.Concat(s))%2 == 0, nil
	}
	l := New[string, bool](automata.NewAlphabet("a", "b"), Acceptor[string](), memberFunc(oracle), nil)
	require.NoError(t, l.StartLearning(context.Background()))
	require.Equal(t, 2, l.Stats().States)
	return l
}

func TestUnclassifiedTransitionIsUnreachable(t *testing.T) {
	ctx := context.Background()
	l := parityLearner(t)

	a, ok := l.pt.existingChild(rootPrefix, "a")
	require.True(t, ok)
	l.pt.nodes[a].state = noState

	_, err := l.HypothesisModel(ctx)
	assert.ErrorIs(t, err, ErrUnreachableState)
	assert.ErrorIs(t, l.checkInvariants(ctx), ErrUnreachableState)
	consistent, err := l.IsConsistent(ctx)
	require.NoError(t, err)
	assert.False(t, consistent)
}

func TestSeparateNeedsClassifiedSuccessors(t *testing.T) {
	ctx := context.Background()
	l := parityLearner(t)

	// "b" shares the initial state but its extensions were never sifted
	b, ok := l.pt.existingChild(rootPrefix, "b")
	require.True(t, ok)
	l.dt.promote(b)
	_, _, err := l.dt.separate(ctx, rootPrefix, b, l.symbols)
	assert.ErrorIs(t, err, ErrUnreachableState)

	consistent, err := l.IsConsistent(ctx)
	require.NoError(t, err)
	assert.False(t, consistent)
	require.NoError(t, l.saturate(ctx))
	assert.NoError(t, l.checkInvariants(ctx))
}

func TestStateWithoutShortPrefixBreaksInvariant(t *testing.T) {
	ctx := context.Background()
	l := parityLearner(t)

	a, ok := l.pt.existingChild(rootPrefix, "a")
	require.True(t, ok)
	l.dt.nodes[l.pt.state(a)].short = nil

	_, err := l.HypothesisModel(ctx)
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, l.checkInvariants(ctx), ErrInvariant)
}

func TestFailedSymbolStaysPending(t *testing.T) {
	ctx := context.Background()
	down := true
	oracle := func(_ context.Context, p, s automata.Word[string]) (bool, error) {
		w := p.Concat(s)
		for _, a := range w {
			if a == "c" && down {
				return false, errors.New("target unavailable")
			}
		}
		return countA(w)%2 == 0, nil
	}
	alphabet := automata.NewAlphabet("a", "b")
	l := New[string, bool](alphabet, Acceptor[string](), memberFunc(oracle), nil)
	require.NoError(t, l.StartLearning(ctx))

	require.Error(t, l.AddAlphabetSymbol(ctx, "c"))
	assert.Equal(t, []string{"c"}, l.pending)
	assert.Equal(t, []string{"a", "b"}, l.Symbols())
	assert.False(t, alphabet.Contains("c"))

	// the previous hypothesis is still usable
	h, err := l.HypothesisModel(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Size())

	down = false
	_, err = l.MakeConsistent(ctx)
	require.NoError(t, err)
	assert.Empty(t, l.pending)
	assert.Equal(t, []string{"a", "b", "c"}, l.Symbols())
	assert.True(t, alphabet.Contains("c"))
	require.NoError(t, l.checkInvariants(ctx))
}
