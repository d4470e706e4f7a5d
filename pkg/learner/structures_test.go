/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: structures_test.go
Description: White-box tests for the suffix trie, prefix tree and decision tree
bookkeeping.
*/

package learner

import (
	"context"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuffixTrieSharing(t *testing.T) {
	trie := newSuffixTrie[string]()
	ab := trie.intern(automata.WordOf("a", "b"))
	assert.Equal(t, ab, trie.intern(automata.WordOf("a", "b")))
	assert.Equal(t, epsilonRef, trie.intern(automata.Epsilon[string]()))

	b, ok := trie.find(automata.WordOf("b"))
	require.True(t, ok)
	assert.Equal(t, ab, trie.prepend("a", b))
	assert.Equal(t, automata.WordOf("c", "a", "b"), trie.word(trie.prepend("c", ab)))

	_, ok = trie.find(automata.WordOf("z", "b"))
	assert.False(t, ok)
	assert.Equal(t, 4, trie.size())
}

func TestPrefixTree(t *testing.T) {
	pt := newPrefixTree[string]()
	a := pt.child(rootPrefix, "a")
	ab := pt.child(a, "b")
	assert.Equal(t, a, pt.child(rootPrefix, "a"))
	assert.Equal(t, automata.WordOf("a", "b"), pt.word(ab))
	assert.Equal(t, noState, pt.state(ab))

	n, ok := pt.find(automata.WordOf("a", "b"))
	require.True(t, ok)
	assert.Equal(t, ab, n)
	_, ok = pt.find(automata.WordOf("b"))
	assert.False(t, ok)
	assert.Equal(t, 3, pt.size())
}

func parityOracle() interfaces.MembershipOracleFunc[string, bool] {
	return func(_ context.Context, prefix, suffix automata.Word[string]) (bool, error) {
		count := 0
		for _, a := range prefix.Concat(suffix) {
			if a == "a" {
				count++
			}
		}
		return count%2 == 0, nil
	}
}

func TestSplitPartitionsShortsAndResiftsLongs(t *testing.T) {
	ctx := context.Background()
	// accepts exactly ε, b, ba and bb: ε and b agree on ε but not on "a"
	accepted := map[string]bool{"ε": true, "b": true, "b a": true, "b b": true}
	oracle := interfaces.MembershipOracleFunc[string, bool](func(_ context.Context, p, s automata.Word[string]) (bool, error) {
		return accepted[p.Concat(s).String()], nil
	})
	pt := newPrefixTree[string]()
	dt := newDecisionTree[string, bool](Acceptor[string](), oracle, pt, discardLogger())

	pt.nodes[rootPrefix].short = true
	a := pt.child(rootPrefix, "a")
	b := pt.child(rootPrefix, "b")
	bb := pt.child(b, "b")
	for _, n := range []int{rootPrefix, a, b, bb} {
		_, err := dt.sift(ctx, n)
		require.NoError(t, err)
	}
	require.Len(t, dt.leaves, 2)
	leaf := pt.state(rootPrefix)
	dt.promote(b)
	require.Equal(t, []int{rootPrefix, b}, dt.nodes[leaf].short)

	require.NoError(t, dt.split(ctx, leaf, automata.WordOf("a")))
	assert.True(t, dt.nodes[leaf].inner)
	assert.Len(t, dt.leaves, 3)
	assert.NotEqual(t, pt.state(rootPrefix), pt.state(b))
	assert.Equal(t, pt.state(rootPrefix), pt.state(bb))
	_, isLong := dt.nodes[pt.state(bb)].long[bb]
	assert.True(t, isLong)

	// a leaf whose shorts agree cannot be split
	single := pt.state(rootPrefix)
	err := dt.split(ctx, single, automata.WordOf("b"))
	assert.ErrorIs(t, err, ErrInconsistentOracle)
	assert.False(t, dt.nodes[single].inner)
	assert.Len(t, dt.leaves, 3)
}

func TestMemoAvoidsRepeatedQueries(t *testing.T) {
	ctx := context.Background()
	calls := 0
	oracle := interfaces.MembershipOracleFunc[string, bool](func(ctx context.Context, p, s automata.Word[string]) (bool, error) {
		calls++
		return parityOracle()(ctx, p, s)
	})
	pt := newPrefixTree[string]()
	dt := newDecisionTree[string, bool](Acceptor[string](), oracle, pt, discardLogger())
	ref := dt.suffixes.intern(automata.WordOf("a"))

	for i := 0; i < 3; i++ {
		d, err := dt.lookup(ctx, rootPrefix, ref)
		require.NoError(t, err)
		assert.False(t, d)
	}
	assert.Equal(t, 1, calls)

	d, ok := dt.cached(rootPrefix, automata.WordOf("a"))
	assert.True(t, ok)
	assert.False(t, d)
	_, ok = dt.cached(rootPrefix, automata.WordOf("b"))
	assert.False(t, ok)
}

func TestTransducerSiftCreatesStates(t *testing.T) {
	ctx := context.Background()
	// output of "a" is the number of a's seen so far modulo 3
	oracle := interfaces.MembershipOracleFunc[string, automata.Word[int]](func(_ context.Context, p, s automata.Word[string]) (automata.Word[int], error) {
		count := 0
		for _, a := range p {
			if a == "a" {
				count++
			}
		}
		out := automata.Word[int]{}
		for _, a := range s {
			if a == "a" {
				count++
			}
			out = append(out, count%3)
		}
		return out, nil
	})
	pt := newPrefixTree[string]()
	dt := newDecisionTree[string, automata.Word[int]](Transducer[string, int](), oracle, pt, discardLogger())
	pt.nodes[rootPrefix].short = true
	_, err := dt.sift(ctx, rootPrefix)
	require.NoError(t, err)

	a := pt.child(rootPrefix, "a")
	_, err = dt.sift(ctx, a)
	require.NoError(t, err)
	dt.promote(a)
	require.NoError(t, dt.split(ctx, rootNode, automata.WordOf("a")))
	assert.Len(t, dt.leaves, 2)

	// "aa" produces a third output under discriminator "a"
	aa := pt.child(a, "a")
	created, err := dt.sift(ctx, aa)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, pt.isShort(aa))
	assert.Len(t, dt.leaves, 3)
	assert.Equal(t, []int{aa}, dt.nodes[pt.state(aa)].short)
}

func TestLowestCommonAncestor(t *testing.T) {
	ctx := context.Background()
	pt := newPrefixTree[string]()
	dt := newDecisionTree[string, bool](Acceptor[string](), parityOracle(), pt, discardLogger())
	pt.nodes[rootPrefix].short = true
	_, err := dt.sift(ctx, rootPrefix)
	require.NoError(t, err)
	a := pt.child(rootPrefix, "a")
	created, err := dt.sift(ctx, a)
	require.NoError(t, err)
	assert.True(t, created)

	x, y := pt.state(rootPrefix), pt.state(a)
	assert.Equal(t, rootNode, dt.lca(x, y))
	assert.Equal(t, x, dt.lca(x, x))
}

func TestAcceptorTreeIsLabelledByAcceptance(t *testing.T) {
	ctx := context.Background()
	pt := newPrefixTree[string]()
	dt := newDecisionTree[string, bool](Acceptor[string](), parityOracle(), pt, discardLogger())
	assert.True(t, dt.nodes[rootNode].inner)
	assert.Empty(t, dt.leaves)

	pt.nodes[rootPrefix].short = true
	a := pt.child(rootPrefix, "a")
	for _, n := range []int{rootPrefix, a} {
		_, err := dt.sift(ctx, n)
		require.NoError(t, err)
	}
	accept, ok := dt.label(pt.state(rootPrefix))
	require.True(t, ok)
	assert.True(t, accept)
	accept, ok = dt.label(pt.state(a))
	require.True(t, ok)
	assert.False(t, accept)
	_, ok = dt.label(rootNode)
	assert.False(t, ok)

	// transducer trees start from a single leaf and carry no labels
	tdt := newDecisionTree[string, automata.Word[int]](Transducer[string, int](), nil, newPrefixTree[string](), discardLogger())
	assert.False(t, tdt.nodes[rootNode].inner)
	_, ok = tdt.label(rootNode)
	assert.False(t, ok)
}

func TestWitnessStackOrder(t *testing.T) {
	var s witnessStack[string, bool]
	s.push(&witness[string, bool]{prefix: 1})
	s.push(&witness[string, bool]{prefix: 2})
	assert.Equal(t, 2, s.peek().prefix)
	assert.Equal(t, 2, s.pop().prefix)
	assert.Equal(t, 1, s.pop().prefix)
	assert.True(t, s.empty())
}
