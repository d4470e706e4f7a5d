/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error values for concrete automata.
*/

package automata

import "errors"

var (
	// ErrUndefinedTransition is returned when a run hits a missing transition
	ErrUndefinedTransition = errors.New("undefined transition")
	// ErrUnknownState is returned for state ids outside the machine
	ErrUnknownState = errors.New("unknown state")
)
