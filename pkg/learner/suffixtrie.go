/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: suffixtrie.go
Description: Interned store of discriminator words. Each node represents a word
and points at the node of the same word without its first symbol, so prepending
a symbol to a stored suffix is a single map lookup and equal words always share
one reference.
*/

package learner

import "github.com/kleascm/akaylee-learner/pkg/automata"

const epsilonRef = 0

type suffixNode[I comparable] struct {
	symbol I
	tail   int
	length int
}

type suffixKey[I comparable] struct {
	tail   int
	symbol I
}

type suffixTrie[I comparable] struct {
	nodes []suffixNode[I]
	index map[suffixKey[I]]int
}

func newSuffixTrie[I comparable]() *suffixTrie[I] {
	return &suffixTrie[I]{
		nodes: []suffixNode[I]{{tail: -1}},
		index: make(map[suffixKey[I]]int),
	}
}

// prepend returns the reference of a·word(ref)
func (t *suffixTrie[I]) prepend(a I, ref int) int {
	key := suffixKey[I]{tail: ref, symbol: a}
	if n, ok := t.index[key]; ok {
		return n
	}
	t.nodes = append(t.nodes, suffixNode[I]{symbol: a, tail: ref, length: t.nodes[ref].length + 1})
	n := len(t.nodes) - 1
	t.index[key] = n
	return n
}

func (t *suffixTrie[I]) intern(w automata.Word[I]) int {
	ref := epsilonRef
	for i := len(w) - 1; i >= 0; i-- {
		ref = t.prepend(w[i], ref)
	}
	return ref
}

// find resolves a word without allocating nodes
func (t *suffixTrie[I]) find(w automata.Word[I]) (int, bool) {
	ref := epsilonRef
	for i := len(w) - 1; i >= 0; i-- {
		n, ok := t.index[suffixKey[I]{tail: ref, symbol: w[i]}]
		if !ok {
			return 0, false
		}
		ref = n
	}
	return ref, true
}

func (t *suffixTrie[I]) word(ref int) automata.Word[I] {
	w := make(automata.Word[I], 0, t.nodes[ref].length)
	for ref != epsilonRef {
		w = append(w, t.nodes[ref].symbol)
		ref = t.nodes[ref].tail
	}
	return w
}

func (t *suffixTrie[I]) size() int {
	return len(t.nodes)
}
