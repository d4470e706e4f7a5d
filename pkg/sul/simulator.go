/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: simulator.go
Description: In-process systems under learning backed by known automata. Used
for benchmarking and to check the learner end to end without a live target.
*/

package sul

import (
	"context"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
)

// MealySimulator drives a transducer one symbol at a time
type MealySimulator[I comparable, O comparable] struct {
	machine *automata.Mealy[I, O]
	state   int
	steps   int64
	resets  int64
}

// NewMealySimulator creates a simulator for machine
func NewMealySimulator[I comparable, O comparable](machine *automata.Mealy[I, O]) *MealySimulator[I, O] {
	return &MealySimulator[I, O]{machine: machine, state: machine.Initial()}
}

// Pre resets to the initial state
func (s *MealySimulator[I, O]) Pre(context.Context) error {
	s.state = s.machine.Initial()
	s.resets++
	return nil
}

// Step takes one transition
func (s *MealySimulator[I, O]) Step(_ context.Context, a I) (O, error) {
	to, out, ok := s.machine.Step(s.state, a)
	if !ok {
		var zero O
		return zero, fmt.Errorf("%w: state %d on %v", automata.ErrUndefinedTransition, s.state, a)
	}
	s.state = to
	s.steps++
	return out, nil
}

// Post is a no-op
func (s *MealySimulator[I, O]) Post(context.Context) error { return nil }

// Steps returns the number of transitions taken
func (s *MealySimulator[I, O]) Steps() int64 { return s.steps }

// Resets returns the number of resets
func (s *MealySimulator[I, O]) Resets() int64 { return s.resets }

// DFASimulator decides acceptance with a known acceptor
type DFASimulator[I comparable] struct {
	machine *automata.DFA[I]
}

// NewDFASimulator creates a simulator for machine
func NewDFASimulator[I comparable](machine *automata.DFA[I]) *DFASimulator[I] {
	return &DFASimulator[I]{machine: machine}
}

// Accepts runs word from the initial state
func (s *DFASimulator[I]) Accepts(_ context.Context, w automata.Word[I]) (bool, error) {
	return s.machine.Accepts(w)
}
