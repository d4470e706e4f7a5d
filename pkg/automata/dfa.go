/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dfa.go
Description: Deterministic finite acceptor with integer states. Used both as the
concrete form of a learned acceptor hypothesis and as a simulated target.
*/

package automata

import "fmt"

// DFA is a deterministic finite acceptor over symbols of type I
type DFA[I comparable] struct {
	initial   int
	accepting []bool
	trans     []map[I]int
}

// NewDFA creates an empty acceptor; the first added state becomes initial
func NewDFA[I comparable]() *DFA[I] {
	return &DFA[I]{}
}

// AddState adds a state and returns its id
func (d *DFA[I]) AddState(accepting bool) int {
	d.accepting = append(d.accepting, accepting)
	d.trans = append(d.trans, make(map[I]int))
	return len(d.accepting) - 1
}

// SetInitial marks the initial state
func (d *DFA[I]) SetInitial(state int) error {
	if err := d.check(state); err != nil {
		return err
	}
	d.initial = state
	return nil
}

// SetTransition defines from --a--> to
func (d *DFA[I]) SetTransition(from int, a I, to int) error {
	if err := d.check(from); err != nil {
		return err
	}
	if err := d.check(to); err != nil {
		return err
	}
	d.trans[from][a] = to
	return nil
}

// Size returns the number of states
func (d *DFA[I]) Size() int {
	return len(d.accepting)
}

// Initial returns the initial state
func (d *DFA[I]) Initial() int {
	return d.initial
}

// IsAccepting reports whether a state is accepting
func (d *DFA[I]) IsAccepting(state int) bool {
	return d.accepting[state]
}

// Successor returns the target of a transition
func (d *DFA[I]) Successor(state int, a I) (int, bool) {
	to, ok := d.trans[state][a]
	return to, ok
}

// Run returns the state reached from the initial state by w
func (d *DFA[I]) Run(w Word[I]) (int, error) {
	return d.RunFrom(d.initial, w)
}

// RunFrom returns the state reached from a given state by w
func (d *DFA[I]) RunFrom(state int, w Word[I]) (int, error) {
	if err := d.check(state); err != nil {
		return 0, err
	}
	for i, a := range w {
		to, ok := d.trans[state][a]
		if !ok {
			return 0, fmt.Errorf("%w: state %d symbol %v at position %d", ErrUndefinedTransition, state, a, i)
		}
		state = to
	}
	return state, nil
}

// Accepts reports whether the acceptor accepts w
func (d *DFA[I]) Accepts(w Word[I]) (bool, error) {
	s, err := d.Run(w)
	if err != nil {
		return false, err
	}
	return d.accepting[s], nil
}

func (d *DFA[I]) check(state int) error {
	if state < 0 || state >= len(d.accepting) {
		return fmt.Errorf("%w: %d", ErrUnknownState, state)
	}
	return nil
}
