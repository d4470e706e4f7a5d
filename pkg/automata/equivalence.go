/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: equivalence.go
Description: Exact equivalence checks between concrete machines. A breadth-first
walk over the product automaton yields a shortest separating word, which the
simulator equivalence oracle hands to the learner as a counterexample.
*/

package automata

type pair struct{ a, b int }

type visit[I comparable] struct {
	p    pair
	prev int
	sym  I
}

func trace[I comparable](nodes []visit[I], at int) Word[I] {
	var rev Word[I]
	for at > 0 {
		rev = append(rev, nodes[at].sym)
		at = nodes[at].prev
	}
	out := make(Word[I], len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// SeparatingWordDFA returns a shortest word accepted by exactly one of the
// acceptors, or false when they agree on every word over the alphabet.
// Missing transitions count as a difference.
func SeparatingWordDFA[I comparable](x, y *DFA[I], alphabet []I) (Word[I], bool) {
	start := pair{x.Initial(), y.Initial()}
	nodes := []visit[I]{{p: start, prev: -1}}
	seen := map[pair]bool{start: true}
	for head := 0; head < len(nodes); head++ {
		cur := nodes[head].p
		if x.IsAccepting(cur.a) != y.IsAccepting(cur.b) {
			return trace(nodes, head), true
		}
		for _, a := range alphabet {
			ta, okA := x.Successor(cur.a, a)
			tb, okB := y.Successor(cur.b, a)
			if okA != okB {
				return trace(nodes, head).Append(a), true
			}
			if !okA {
				continue
			}
			next := pair{ta, tb}
			if seen[next] {
				continue
			}
			seen[next] = true
			nodes = append(nodes, visit[I]{p: next, prev: head, sym: a})
		}
	}
	return nil, false
}

// SeparatingWordMealy returns a shortest input word on which the transducers
// produce different outputs, or false when they are equivalent.
func SeparatingWordMealy[I comparable, O comparable](x, y *Mealy[I, O], alphabet []I) (Word[I], bool) {
	start := pair{x.Initial(), y.Initial()}
	nodes := []visit[I]{{p: start, prev: -1}}
	seen := map[pair]bool{start: true}
	for head := 0; head < len(nodes); head++ {
		cur := nodes[head].p
		for _, a := range alphabet {
			ta, oa, okA := x.Step(cur.a, a)
			tb, ob, okB := y.Step(cur.b, a)
			if okA != okB || (okA && oa != ob) {
				return trace(nodes, head).Append(a), true
			}
			if !okA {
				continue
			}
			next := pair{ta, tb}
			if seen[next] {
				continue
			}
			seen[next] = true
			nodes = append(nodes, visit[I]{p: next, prev: head, sym: a})
		}
	}
	return nil, false
}
