/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mealy.go
Description: Deterministic Mealy machine (transducer) with integer states and
per-transition outputs.
*/

package automata

import "fmt"

type mealyEdge[O comparable] struct {
	to  int
	out O
}

// Mealy is a deterministic transducer from I to O
type Mealy[I comparable, O comparable] struct {
	initial int
	size    int
	trans   []map[I]mealyEdge[O]
}

// NewMealy creates an empty transducer; the first added state becomes initial
func NewMealy[I comparable, O comparable]() *Mealy[I, O] {
	return &Mealy[I, O]{}
}

// AddState adds a state and returns its id
func (m *Mealy[I, O]) AddState() int {
	m.trans = append(m.trans, make(map[I]mealyEdge[O]))
	m.size++
	return m.size - 1
}

// SetInitial marks the initial state
func (m *Mealy[I, O]) SetInitial(state int) error {
	if err := m.check(state); err != nil {
		return err
	}
	m.initial = state
	return nil
}

// SetTransition defines from --a/out--> to
func (m *Mealy[I, O]) SetTransition(from int, a I, out O, to int) error {
	if err := m.check(from); err != nil {
		return err
	}
	if err := m.check(to); err != nil {
		return err
	}
	m.trans[from][a] = mealyEdge[O]{to: to, out: out}
	return nil
}

// Size returns the number of states
func (m *Mealy[I, O]) Size() int {
	return m.size
}

// Initial returns the initial state
func (m *Mealy[I, O]) Initial() int {
	return m.initial
}

// Step returns the successor and output of one transition
func (m *Mealy[I, O]) Step(state int, a I) (int, O, bool) {
	e, ok := m.trans[state][a]
	return e.to, e.out, ok
}

// Output returns the output word produced by w from the initial state
func (m *Mealy[I, O]) Output(w Word[I]) (Word[O], error) {
	_, out, err := m.RunFrom(m.initial, w)
	return out, err
}

// RunFrom runs w from a state and returns the reached state and outputs
func (m *Mealy[I, O]) RunFrom(state int, w Word[I]) (int, Word[O], error) {
	if err := m.check(state); err != nil {
		return 0, nil, err
	}
	out := make(Word[O], 0, len(w))
	for i, a := range w {
		e, ok := m.trans[state][a]
		if !ok {
			return 0, nil, fmt.Errorf("%w: state %d symbol %v at position %d", ErrUndefinedTransition, state, a, i)
		}
		out = append(out, e.out)
		state = e.to
	}
	return state, out, nil
}

func (m *Mealy[I, O]) check(state int) error {
	if state < 0 || state >= m.size {
		return fmt.Errorf("%w: %d", ErrUnknownState, state)
	}
	return nil
}
