/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values returned by the learner. Sequencing errors signal API
misuse, oracle errors signal a non-deterministic or mis-wired target, and
invariant errors signal a defect in the learner itself.
*/

package learner

import "errors"

var (
	// ErrNotStarted is returned when an operation requires StartLearning first
	ErrNotStarted = errors.New("learning has not been started")
	// ErrAlreadyStarted is returned by a second StartLearning call
	ErrAlreadyStarted = errors.New("learning already started")
	// ErrInconsistentOracle is returned when query answers contradict each other
	ErrInconsistentOracle = errors.New("inconsistent membership oracle")
	// ErrUnreachableState is returned when a hypothesis transition is missing
	ErrUnreachableState = errors.New("unreachable hypothesis state")
	// ErrInvariant is returned when internal bookkeeping is violated
	ErrInvariant = errors.New("learner invariant violated")
	// ErrUnknownSymbol is returned for words using symbols the learner does not know
	ErrUnknownSymbol = errors.New("unknown input symbol")
)
