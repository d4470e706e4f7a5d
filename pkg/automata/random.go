/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: random.go
Description: Random complete machines for simulated targets and learner tests.
*/

package automata

import "math/rand"

// RandomDFA builds a complete acceptor with n states over the alphabet
func RandomDFA[I comparable](rng *rand.Rand, n int, alphabet []I) *DFA[I] {
	d := NewDFA[I]()
	for i := 0; i < n; i++ {
		d.AddState(rng.Intn(2) == 0)
	}
	for s := 0; s < n; s++ {
		for _, a := range alphabet {
			_ = d.SetTransition(s, a, rng.Intn(n))
		}
	}
	return d
}

// RandomMealy builds a complete transducer with n states whose outputs are
// drawn from outputs
func RandomMealy[I comparable, O comparable](rng *rand.Rand, n int, alphabet []I, outputs []O) *Mealy[I, O] {
	m := NewMealy[I, O]()
	for i := 0; i < n; i++ {
		m.AddState()
	}
	for s := 0; s < n; s++ {
		for _, a := range alphabet {
			_ = m.SetTransition(s, a, outputs[rng.Intn(len(outputs))], rng.Intn(n))
		}
	}
	return m
}
