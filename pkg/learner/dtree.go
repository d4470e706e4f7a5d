/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dtree.go
Description: Decision tree over explored prefixes. Inner nodes discriminate by
the output of a suffix experiment, leaves are hypothesis states. The tree owns
the membership query memo, so every (prefix, suffix) pair is asked at most once
no matter whether it was needed for sifting, splitting, consistency checks or
hypothesis outputs.
*/

package learner

import (
	"context"
	"fmt"
	"sort"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
)

const rootNode = 0

type dtNode[D any] struct {
	parent int
	depth  int
	inner  bool

	// inner nodes
	disc  int
	fixed [2]int
	keys  []D
	kids  []int

	// leaves
	short []int
	long  map[int]struct{}
}

type memoKey struct {
	prefix int
	suffix int
}

type decisionTree[I comparable, D any] struct {
	domain   Domain[I, D]
	mq       interfaces.MembershipOracle[I, D]
	pt       *prefixTree[I]
	suffixes *suffixTrie[I]
	nodes    []dtNode[D]
	leaves   []int
	memo     map[memoKey]D
	logger   *logrus.Logger
	// labelled trees start with an inner root on the empty word whose
	// branches carry the state outputs
	labelled bool
}

func newDecisionTree[I comparable, D any](domain Domain[I, D], mq interfaces.MembershipOracle[I, D], pt *prefixTree[I], logger *logrus.Logger) *decisionTree[I, D] {
	dt := &decisionTree[I, D]{
		domain:   domain,
		mq:       mq,
		pt:       pt,
		suffixes: newSuffixTrie[I](),
		memo:     make(map[memoKey]D),
		logger:   logger,
	}
	if v, ok := domain.rootDiscriminator(); ok {
		dt.nodes = append(dt.nodes, dtNode[D]{
			parent: -1,
			inner:  true,
			disc:   dt.suffixes.intern(v),
			fixed:  [2]int{-1, -1},
		})
		dt.labelled = true
		return dt
	}
	dt.newLeaf(-1)
	return dt
}

func (dt *decisionTree[I, D]) newLeaf(parent int) int {
	depth := 0
	if parent >= 0 {
		depth = dt.nodes[parent].depth + 1
	}
	dt.nodes = append(dt.nodes, dtNode[D]{
		parent: parent,
		depth:  depth,
		fixed:  [2]int{-1, -1},
		long:   make(map[int]struct{}),
	})
	n := len(dt.nodes) - 1
	dt.leaves = append(dt.leaves, n)
	return n
}

// lookup answers (word(prefix), word(suffix)) through the memo
func (dt *decisionTree[I, D]) lookup(ctx context.Context, prefix, suffix int) (D, error) {
	key := memoKey{prefix: prefix, suffix: suffix}
	if d, ok := dt.memo[key]; ok {
		return d, nil
	}
	d, err := dt.mq.Answer(ctx, dt.pt.word(prefix), dt.suffixes.word(suffix))
	if err != nil {
		var zero D
		return zero, fmt.Errorf("failed to answer membership query: %w", err)
	}
	dt.memo[key] = d
	return d, nil
}

// cached returns a memoized answer without asking the oracle
func (dt *decisionTree[I, D]) cached(prefix int, suffix automata.Word[I]) (D, bool) {
	ref, ok := dt.suffixes.find(suffix)
	if !ok {
		var zero D
		return zero, false
	}
	d, ok := dt.memo[memoKey{prefix: prefix, suffix: ref}]
	return d, ok
}

func (dt *decisionTree[I, D]) childFor(node int, d D) (int, bool) {
	n := &dt.nodes[node]
	if dt.domain.binary() {
		b := dt.domain.branch(d)
		if b < 0 || b > 1 || n.fixed[b] < 0 {
			return 0, false
		}
		return n.fixed[b], true
	}
	for i, k := range n.keys {
		if dt.domain.equal(k, d) {
			return n.kids[i], true
		}
	}
	return 0, false
}

func (dt *decisionTree[I, D]) addChild(node int, d D) (int, error) {
	if dt.domain.binary() {
		b := dt.domain.branch(d)
		if b < 0 || b > 1 {
			return 0, fmt.Errorf("%w: output %v outside the binary domain", ErrInconsistentOracle, d)
		}
		c := dt.newLeaf(node)
		dt.nodes[node].fixed[b] = c
		dt.nodes[node].keys = append(dt.nodes[node].keys, d)
		dt.nodes[node].kids = append(dt.nodes[node].kids, c)
		return c, nil
	}
	c := dt.newLeaf(node)
	dt.nodes[node].keys = append(dt.nodes[node].keys, d)
	dt.nodes[node].kids = append(dt.nodes[node].kids, c)
	return c, nil
}

func (dt *decisionTree[I, D]) attach(prefix, leaf int) {
	dt.pt.nodes[prefix].state = leaf
	n := &dt.nodes[leaf]
	if !dt.pt.nodes[prefix].short {
		n.long[prefix] = struct{}{}
		return
	}
	delete(n.long, prefix)
	for _, s := range n.short {
		if s == prefix {
			return
		}
	}
	n.short = append(n.short, prefix)
}

// sift classifies a prefix from the root. It reports whether a new state had
// to be created for an output value never seen at some inner node.
func (dt *decisionTree[I, D]) sift(ctx context.Context, prefix int) (bool, error) {
	return dt.siftFrom(ctx, prefix, rootNode)
}

func (dt *decisionTree[I, D]) siftFrom(ctx context.Context, prefix, start int) (bool, error) {
	node := start
	created := false
	for dt.nodes[node].inner {
		d, err := dt.lookup(ctx, prefix, dt.nodes[node].disc)
		if err != nil {
			return created, err
		}
		next, ok := dt.childFor(node, d)
		if !ok {
			// binary inner nodes are born with both branches, except the root
			if dt.domain.binary() && node != rootNode {
				return created, fmt.Errorf("%w: output %v for %s under %s has no branch",
					ErrInconsistentOracle, d, dt.pt.word(prefix), dt.suffixes.word(dt.nodes[node].disc))
			}
			if next, err = dt.addChild(node, d); err != nil {
				return created, err
			}
			// a fresh state is represented by the prefix that discovered it
			dt.pt.nodes[prefix].short = true
			created = true
			dt.logger.WithFields(logrus.Fields{
				"prefix": dt.pt.word(prefix).String(),
				"state":  next,
			}).Debug("New state discovered while sifting")
		}
		node = next
	}
	dt.attach(prefix, node)
	return created, nil
}

// label returns the output of leaf under the root discriminator of a
// labelled tree
func (dt *decisionTree[I, D]) label(leaf int) (D, bool) {
	var zero D
	if !dt.labelled || leaf < 0 || leaf >= len(dt.nodes) || dt.nodes[leaf].inner {
		return zero, false
	}
	n := leaf
	for dt.nodes[n].parent != rootNode {
		if dt.nodes[n].parent < 0 {
			return zero, false
		}
		n = dt.nodes[n].parent
	}
	root := &dt.nodes[rootNode]
	for i, kid := range root.kids {
		if kid == n {
			return root.keys[i], true
		}
	}
	return zero, false
}

// promote marks a classified prefix as short for its state
func (dt *decisionTree[I, D]) promote(prefix int) {
	dt.pt.nodes[prefix].short = true
	if s := dt.pt.nodes[prefix].state; s != noState {
		dt.attach(prefix, s)
	}
}

func (dt *decisionTree[I, D]) removeLeaf(leaf int) {
	for i, l := range dt.leaves {
		if l == leaf {
			dt.leaves = append(dt.leaves[:i], dt.leaves[i+1:]...)
			return
		}
	}
}

// split turns a leaf into an inner node discriminating on suffix. The short
// prefixes are partitioned by their outputs and the long prefixes are sifted
// again below the new inner node only. The tree is left untouched when the
// suffix does not separate at least two short prefixes.
func (dt *decisionTree[I, D]) split(ctx context.Context, leaf int, suffix automata.Word[I]) error {
	ref := dt.suffixes.intern(suffix)
	shorts := append([]int(nil), dt.nodes[leaf].short...)
	outs := make([]D, len(shorts))
	distinct := make([]D, 0, 2)
	for i, sp := range shorts {
		d, err := dt.lookup(ctx, sp, ref)
		if err != nil {
			return err
		}
		outs[i] = d
		seen := false
		for _, x := range distinct {
			if dt.domain.equal(x, d) {
				seen = true
				break
			}
		}
		if !seen {
			distinct = append(distinct, d)
		}
	}
	if len(distinct) < 2 {
		return fmt.Errorf("%w: suffix %s does not separate the short prefixes of state %d",
			ErrInconsistentOracle, suffix, leaf)
	}

	longs := make([]int, 0, len(dt.nodes[leaf].long))
	for lp := range dt.nodes[leaf].long {
		longs = append(longs, lp)
	}
	sort.Ints(longs)

	n := &dt.nodes[leaf]
	n.inner = true
	n.disc = ref
	n.short = nil
	n.long = nil
	dt.removeLeaf(leaf)

	for i, sp := range shorts {
		child, ok := dt.childFor(leaf, outs[i])
		if !ok {
			var err error
			if child, err = dt.addChild(leaf, outs[i]); err != nil {
				return err
			}
		}
		dt.attach(sp, child)
	}
	for _, lp := range longs {
		dt.pt.nodes[lp].state = noState
		if _, err := dt.siftFrom(ctx, lp, leaf); err != nil {
			return err
		}
	}

	dt.logger.WithFields(logrus.Fields{
		"state":  leaf,
		"suffix": suffix.String(),
		"shorts": len(shorts),
		"longs":  len(longs),
		"states": len(dt.leaves),
	}).Debug("Split state")
	return nil
}

// lca returns the lowest common ancestor of two nodes
func (dt *decisionTree[I, D]) lca(a, b int) int {
	for dt.nodes[a].depth > dt.nodes[b].depth {
		a = dt.nodes[a].parent
	}
	for dt.nodes[b].depth > dt.nodes[a].depth {
		b = dt.nodes[b].parent
	}
	for a != b {
		a = dt.nodes[a].parent
		b = dt.nodes[b].parent
	}
	return a
}

// closure sifts every one-symbol extension of every short prefix
func (dt *decisionTree[I, D]) closure(ctx context.Context, symbols []I) (bool, error) {
	changed := false
	for li := 0; li < len(dt.leaves); li++ {
		shorts := append([]int(nil), dt.nodes[dt.leaves[li]].short...)
		for _, sp := range shorts {
			for _, a := range symbols {
				c := dt.pt.child(sp, a)
				if dt.pt.nodes[c].state != noState {
					continue
				}
				created, err := dt.sift(ctx, c)
				if err != nil {
					return changed, err
				}
				changed = changed || created
			}
		}
	}
	return changed, nil
}

// separate looks for a suffix on which two short prefixes of one state differ
func (dt *decisionTree[I, D]) separate(ctx context.Context, ref, other int, symbols []I) (automata.Word[I], bool, error) {
	for _, v := range dt.domain.localSuffixes(symbols) {
		sref := dt.suffixes.intern(v)
		x, err := dt.lookup(ctx, ref, sref)
		if err != nil {
			return nil, false, err
		}
		y, err := dt.lookup(ctx, other, sref)
		if err != nil {
			return nil, false, err
		}
		if !dt.domain.equal(x, y) {
			return v, true, nil
		}
	}
	for _, a := range symbols {
		s1 := dt.pt.state(dt.pt.child(ref, a))
		s2 := dt.pt.state(dt.pt.child(other, a))
		if s1 == noState || s2 == noState {
			return nil, false, fmt.Errorf("%w: successor of %s on %v was never classified",
				ErrUnreachableState, dt.pt.word(ref), a)
		}
		if s1 != s2 {
			v := dt.suffixes.word(dt.nodes[dt.lca(s1, s2)].disc)
			return v.Prepend(a), true, nil
		}
	}
	return nil, false, nil
}

// makeConsistent runs one round of closure and consistency checking and
// reports whether the hypothesis changed. At most one split happens per round.
func (dt *decisionTree[I, D]) makeConsistent(ctx context.Context, symbols []I) (bool, error) {
	changed, err := dt.closure(ctx, symbols)
	if err != nil {
		return changed, err
	}
	for li := 0; li < len(dt.leaves); li++ {
		leaf := dt.leaves[li]
		shorts := dt.nodes[leaf].short
		if len(shorts) < 2 {
			continue
		}
		ref := shorts[0]
		for _, other := range shorts[1:] {
			suffix, found, err := dt.separate(ctx, ref, other, symbols)
			if err != nil {
				return changed, err
			}
			if !found {
				continue
			}
			if err := dt.split(ctx, leaf, suffix); err != nil {
				return changed, err
			}
			return true, nil
		}
	}
	return changed, nil
}

// isConsistent reports whether a round of makeConsistent would change nothing.
// It may ask queries and classify new prefixes but never splits.
func (dt *decisionTree[I, D]) isConsistent(ctx context.Context, symbols []I) (bool, error) {
	for _, leaf := range dt.leaves {
		for _, sp := range dt.nodes[leaf].short {
			for _, a := range symbols {
				c, ok := dt.pt.existingChild(sp, a)
				if !ok || dt.pt.state(c) == noState {
					return false, nil
				}
			}
		}
	}
	for _, leaf := range dt.leaves {
		shorts := dt.nodes[leaf].short
		if len(shorts) < 2 {
			continue
		}
		for _, other := range shorts[1:] {
			_, found, err := dt.separate(ctx, shorts[0], other, symbols)
			if err != nil {
				return false, err
			}
			if found {
				return false, nil
			}
		}
	}
	return true, nil
}

func (dt *decisionTree[I, D]) firstShort(leaf int) (int, error) {
	if leaf < 0 || leaf >= len(dt.nodes) || dt.nodes[leaf].inner || len(dt.nodes[leaf].short) == 0 {
		return 0, fmt.Errorf("%w: state %d has no short prefix", ErrInvariant, leaf)
	}
	return dt.nodes[leaf].short[0], nil
}
