/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: witness.go
Description: Deferred counterexample queries awaiting re-verification.
*/

package learner

import "github.com/kleascm/akaylee-learner/pkg/automata"

// witness is a query (word(prefix), suffix) whose answer may still be pending
type witness[I comparable, D any] struct {
	prefix   int
	suffix   automata.Word[I]
	output   D
	answered bool
}

// witnessStack is consumed first-in, last-out
type witnessStack[I comparable, D any] struct {
	items []*witness[I, D]
}

func (s *witnessStack[I, D]) push(w *witness[I, D]) {
	s.items = append(s.items, w)
}

func (s *witnessStack[I, D]) peek() *witness[I, D] {
	return s.items[len(s.items)-1]
}

func (s *witnessStack[I, D]) pop() *witness[I, D] {
	w := s.items[len(s.items)-1]
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	return w
}

func (s *witnessStack[I, D]) empty() bool {
	return len(s.items) == 0
}

func (s *witnessStack[I, D]) reset() {
	s.items = nil
}
