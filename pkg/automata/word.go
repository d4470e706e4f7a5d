/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: word.go
Description: Word type shared by the learner, oracles and systems under learning.
A word is an immutable-by-convention sequence of symbols; every operation that
grows or slices a word returns a fresh copy so callers may retain results.
*/

package automata

import (
	"fmt"
	"strings"
)

// Word is a finite sequence of symbols
type Word[I comparable] []I

// Epsilon returns the empty word
func Epsilon[I comparable]() Word[I] {
	return Word[I]{}
}

// WordOf builds a word from the given symbols
func WordOf[I comparable](symbols ...I) Word[I] {
	w := make(Word[I], len(symbols))
	copy(w, symbols)
	return w
}

// Len returns the number of symbols in the word
func (w Word[I]) Len() int {
	return len(w)
}

// IsEmpty reports whether the word is epsilon
func (w Word[I]) IsEmpty() bool {
	return len(w) == 0
}

// Prefix returns the first n symbols
func (w Word[I]) Prefix(n int) Word[I] {
	return WordOf(w[:n]...)
}

// Suffix returns the word starting at index from
func (w Word[I]) Suffix(from int) Word[I] {
	return WordOf(w[from:]...)
}

// Append returns w followed by a
func (w Word[I]) Append(a I) Word[I] {
	out := make(Word[I], len(w), len(w)+1)
	copy(out, w)
	return append(out, a)
}

// Prepend returns a followed by w
func (w Word[I]) Prepend(a I) Word[I] {
	out := make(Word[I], 0, len(w)+1)
	out = append(out, a)
	return append(out, w...)
}

// Concat returns w followed by other
func (w Word[I]) Concat(other Word[I]) Word[I] {
	out := make(Word[I], 0, len(w)+len(other))
	out = append(out, w...)
	return append(out, other...)
}

// Equal reports symbol-wise equality
func (w Word[I]) Equal(other Word[I]) bool {
	if len(w) != len(other) {
		return false
	}
	for i := range w {
		if w[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the word as space separated symbols, or ε when empty
func (w Word[I]) String() string {
	if len(w) == 0 {
		return "ε"
	}
	parts := make([]string, len(w))
	for i, a := range w {
		parts[i] = fmt.Sprint(a)
	}
	return strings.Join(parts, " ")
}
