/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: alphabet.go
Description: Versioned append-only input alphabet. The alphabet is shared by
reference between the learner and its collaborators and may grow while learning
is in progress; symbols are never removed or reordered.
*/

package automata

import "sync"

// Alphabet is an ordered, append-only set of symbols
type Alphabet[I comparable] struct {
	mu      sync.RWMutex
	symbols []I
	index   map[I]int
}

// NewAlphabet creates an alphabet holding the given symbols in order
func NewAlphabet[I comparable](symbols ...I) *Alphabet[I] {
	a := &Alphabet[I]{index: make(map[I]int, len(symbols))}
	for _, s := range symbols {
		a.Add(s)
	}
	return a
}

// Add appends a symbol; it returns false when the symbol is already present
func (a *Alphabet[I]) Add(symbol I) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.index[symbol]; ok {
		return false
	}
	a.index[symbol] = len(a.symbols)
	a.symbols = append(a.symbols, symbol)
	return true
}

// Contains reports whether the symbol is part of the alphabet
func (a *Alphabet[I]) Contains(symbol I) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.index[symbol]
	return ok
}

// Index returns the position of a symbol, or -1
func (a *Alphabet[I]) Index(symbol I) int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if i, ok := a.index[symbol]; ok {
		return i
	}
	return -1
}

// Symbol returns the symbol at position i
func (a *Alphabet[I]) Symbol(i int) I {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.symbols[i]
}

// Size returns the number of symbols
func (a *Alphabet[I]) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.symbols)
}

// Version identifies the alphabet contents. Since the alphabet only grows,
// the size doubles as a version number.
func (a *Alphabet[I]) Version() int {
	return a.Size()
}

// Symbols returns a copy of the symbols in insertion order
func (a *Alphabet[I]) Symbols() []I {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]I, len(a.symbols))
	copy(out, a.symbols)
	return out
}
