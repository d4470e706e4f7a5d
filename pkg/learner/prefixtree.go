/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: prefixtree.go
Description: Prefix exploration tree. Every explored word is a node holding the
hypothesis state (decision tree leaf) that currently classifies it and whether
it is a short prefix, i.e. a representative access sequence of that state.
*/

package learner

import "github.com/kleascm/akaylee-learner/pkg/automata"

const (
	rootPrefix = 0
	noState    = -1
)

type prefixNode[I comparable] struct {
	parent   int
	symbol   I
	depth    int
	children map[I]int
	state    int
	short    bool
}

type prefixTree[I comparable] struct {
	nodes []prefixNode[I]
}

func newPrefixTree[I comparable]() *prefixTree[I] {
	return &prefixTree[I]{
		nodes: []prefixNode[I]{{parent: -1, state: noState}},
	}
}

// child returns the node for word(n)·a, allocating it unclassified if needed
func (t *prefixTree[I]) child(n int, a I) int {
	if c, ok := t.nodes[n].children[a]; ok {
		return c
	}
	t.nodes = append(t.nodes, prefixNode[I]{
		parent: n,
		symbol: a,
		depth:  t.nodes[n].depth + 1,
		state:  noState,
	})
	c := len(t.nodes) - 1
	if t.nodes[n].children == nil {
		t.nodes[n].children = make(map[I]int)
	}
	t.nodes[n].children[a] = c
	return c
}

func (t *prefixTree[I]) existingChild(n int, a I) (int, bool) {
	c, ok := t.nodes[n].children[a]
	return c, ok
}

func (t *prefixTree[I]) find(w automata.Word[I]) (int, bool) {
	n := rootPrefix
	for _, a := range w {
		c, ok := t.nodes[n].children[a]
		if !ok {
			return 0, false
		}
		n = c
	}
	return n, true
}

func (t *prefixTree[I]) word(n int) automata.Word[I] {
	w := make(automata.Word[I], t.nodes[n].depth)
	for i := len(w) - 1; i >= 0; i-- {
		w[i] = t.nodes[n].symbol
		n = t.nodes[n].parent
	}
	return w
}

func (t *prefixTree[I]) state(n int) int {
	return t.nodes[n].state
}

func (t *prefixTree[I]) isShort(n int) bool {
	return t.nodes[n].short
}

func (t *prefixTree[I]) size() int {
	return len(t.nodes)
}
