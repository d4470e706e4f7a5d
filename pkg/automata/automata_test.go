/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: automata_test.go
Description: Tests for words, the growing alphabet, concrete machines and
separating-word search.
*/

package automata_test

import (
	"math/rand"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordOperations(t *testing.T) {
	w := automata.WordOf("a", "b", "c")
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, automata.WordOf("a", "b"), w.Prefix(2))
	assert.Equal(t, automata.WordOf("c"), w.Suffix(2))
	assert.True(t, w.Suffix(3).IsEmpty())
	assert.Equal(t, automata.WordOf("x", "a", "b", "c"), w.Prepend("x"))
	assert.Equal(t, automata.WordOf("a", "b", "c", "d"), w.Append("d"))
	assert.True(t, w.Concat(automata.WordOf("d")).Equal(automata.WordOf("a", "b", "c", "d")))
	assert.Equal(t, "a b c", w.String())
	assert.Equal(t, "ε", automata.Epsilon[string]().String())

	// Append on a shared backing array must not alias
	base := make(automata.Word[string], 1, 4)
	base[0] = "a"
	x := base.Append("x")
	y := base.Append("y")
	assert.Equal(t, "x", x[1])
	assert.Equal(t, "y", y[1])
}

func TestAlphabetGrowth(t *testing.T) {
	a := automata.NewAlphabet("a", "b")
	assert.Equal(t, 2, a.Size())
	assert.False(t, a.Add("a"))
	assert.True(t, a.Add("c"))
	assert.Equal(t, 3, a.Version())
	assert.Equal(t, 2, a.Index("c"))
	assert.Equal(t, -1, a.Index("z"))
	assert.Equal(t, "b", a.Symbol(1))

	old := a.Symbols()
	a.Add("d")
	assert.Len(t, old, 3)
	assert.Equal(t, []string{"a", "b", "c", "d"}, a.Symbols())
}

func TestDFARun(t *testing.T) {
	d := automata.NewDFA[string]()
	s0 := d.AddState(false)
	s1 := d.AddState(true)
	require.NoError(t, d.SetTransition(s0, "a", s1))
	require.NoError(t, d.SetTransition(s1, "a", s0))

	ok, err := d.Accepts(automata.WordOf("a"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.Accepts(automata.WordOf("a", "a"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.Accepts(automata.WordOf("b"))
	assert.ErrorIs(t, err, automata.ErrUndefinedTransition)
	assert.ErrorIs(t, d.SetInitial(7), automata.ErrUnknownState)
}

func TestMealyOutput(t *testing.T) {
	m := automata.NewMealy[string, int]()
	s0 := m.AddState()
	s1 := m.AddState()
	require.NoError(t, m.SetTransition(s0, "a", 0, s1))
	require.NoError(t, m.SetTransition(s1, "a", 1, s0))

	out, err := m.Output(automata.WordOf("a", "a", "a"))
	require.NoError(t, err)
	assert.Equal(t, automata.WordOf(0, 1, 0), out)
}

func TestSeparatingWordDFA(t *testing.T) {
	alphabet := []string{"a", "b"}
	rng := rand.New(rand.NewSource(3))
	x := automata.RandomDFA(rng, 6, alphabet)

	_, found := automata.SeparatingWordDFA(x, x, alphabet)
	assert.False(t, found)

	// accepts words ending with "b"
	y := automata.NewDFA[string]()
	n := y.AddState(false)
	e := y.AddState(true)
	for _, s := range []int{n, e} {
		require.NoError(t, y.SetTransition(s, "a", n))
		require.NoError(t, y.SetTransition(s, "b", e))
	}
	z := automata.NewDFA[string]()
	z0 := z.AddState(false)
	require.NoError(t, z.SetTransition(z0, "a", z0))
	require.NoError(t, z.SetTransition(z0, "b", z0))

	w, found := automata.SeparatingWordDFA(y, z, alphabet)
	require.True(t, found)
	assert.Equal(t, automata.WordOf("b"), w)
}

func TestSeparatingWordMealy(t *testing.T) {
	alphabet := []string{"a", "b"}
	x := automata.NewMealy[string, int]()
	x0 := x.AddState()
	x1 := x.AddState()
	require.NoError(t, x.SetTransition(x0, "a", 0, x1))
	require.NoError(t, x.SetTransition(x0, "b", 0, x0))
	require.NoError(t, x.SetTransition(x1, "a", 0, x1))
	require.NoError(t, x.SetTransition(x1, "b", 1, x0))

	y := automata.NewMealy[string, int]()
	y0 := y.AddState()
	require.NoError(t, y.SetTransition(y0, "a", 0, y0))
	require.NoError(t, y.SetTransition(y0, "b", 0, y0))

	w, found := automata.SeparatingWordMealy(x, y, alphabet)
	require.True(t, found)
	assert.Equal(t, automata.WordOf("a", "b"), w)

	_, found = automata.SeparatingWordMealy(x, x, alphabet)
	assert.False(t, found)
}
