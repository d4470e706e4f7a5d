/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: sul_test.go
Description: Tests for the systems under learning and target files.
*/

package sul

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestMealySimulator(t *testing.T) {
	m := automata.NewMealy[string, int]()
	q0, q1 := m.AddState(), m.AddState()
	require.NoError(t, m.SetTransition(q0, "a", 1, q1))
	require.NoError(t, m.SetTransition(q1, "a", 2, q0))

	ctx := context.Background()
	s := NewMealySimulator(m)
	require.NoError(t, s.Pre(ctx))
	for _, want := range []int{1, 2, 1} {
		got, err := s.Step(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := s.Step(ctx, "b")
	assert.ErrorIs(t, err, automata.ErrUndefinedTransition)
	require.NoError(t, s.Post(ctx))
	assert.Equal(t, int64(3), s.Steps())
	assert.Equal(t, int64(1), s.Resets())
}

func TestDFASimulator(t *testing.T) {
	d := automata.NewDFA[string]()
	q0, q1 := d.AddState(true), d.AddState(false)
	require.NoError(t, d.SetTransition(q0, "a", q1))
	require.NoError(t, d.SetTransition(q1, "a", q0))

	s := NewDFASimulator(d)
	ok, err := s.Accepts(context.Background(), automata.WordOf("a", "a"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Accepts(context.Background(), automata.WordOf("a"))
	require.NoError(t, err)
	assert.False(t, ok)
}

const counterScript = `c=0; while read -r l; do if [ "$l" = inc ]; then c=$((c+1)); fi; echo "$c"; done`

func TestProcessSUL(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p, err := NewProcessSUL(interfaces.ProcessTarget{
		Command:     "sh",
		Args:        []string{"-c", counterScript},
		StepTimeout: 2 * time.Second,
	}, quietLogger())
	require.NoError(t, err)

	ctx := context.Background()
	for round := 0; round < 2; round++ {
		require.NoError(t, p.Pre(ctx))
		var outs []string
		for _, in := range []string{"inc", "get", "inc"} {
			out, err := p.Step(ctx, in)
			require.NoError(t, err)
			outs = append(outs, out)
		}
		require.NoError(t, p.Post(ctx))
		assert.Equal(t, []string{"1", "1", "2"}, outs, "round %d starts fresh", round)
	}
}

func TestProcessSULTimeout(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p, err := NewProcessSUL(interfaces.ProcessTarget{
		Command:     "sh",
		Args:        []string{"-c", "while read -r l; do :; done"},
		StepTimeout: 50 * time.Millisecond,
	}, quietLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, p.Pre(ctx))
	_, err = p.Step(ctx, "x")
	assert.ErrorIs(t, err, ErrStepTimeout)
	require.NoError(t, p.Post(ctx))
}

func TestNewProcessSULRequiresCommand(t *testing.T) {
	_, err := NewProcessSUL(interfaces.ProcessTarget{}, nil)
	assert.Error(t, err)
}

// sessionServer keeps a login flag per session
func sessionServer(t *testing.T) *httptest.Server {
	var mu sync.Mutex
	logged := map[string]bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		logged[r.Header.Get(SessionHeader)] = true
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `<html><body><p class="msg">welcome</p></body></html>`)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		ok := logged[r.Header.Get(SessionHeader)]
		mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `<p class="msg">denied</p>`)
			return
		}
		_, _ = io.WriteString(w, `<p class="msg">  secret   data </p>`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPSULSessions(t *testing.T) {
	srv := sessionServer(t)
	h, err := NewHTTPSUL(interfaces.HTTPTarget{
		BaseURL: srv.URL,
		Symbols: map[string]interfaces.Endpoint{
			"login": {Method: interfaces.HTTPMethodPOST, Path: "/login"},
			"data":  {Path: "data"},
		},
		Selector:  ".msg",
		RateLimit: 1000,
		Burst:     10,
	}, quietLogger())
	require.NoError(t, err)

	ctx := context.Background()
	run := func(inputs ...string) []string {
		require.NoError(t, h.Pre(ctx))
		defer func() { require.NoError(t, h.Post(ctx)) }()
		var outs []string
		for _, in := range inputs {
			out, err := h.Step(ctx, in)
			require.NoError(t, err)
			outs = append(outs, out)
		}
		return outs
	}

	assert.Equal(t, []string{"401:denied"}, run("data"))
	assert.Equal(t, []string{"200:welcome", "200:secret data"}, run("login", "data"))
	assert.Equal(t, []string{"401:denied"}, run("data"), "a new query gets a new session")
}

func TestHTTPSULStatusOnly(t *testing.T) {
	srv := sessionServer(t)
	h, err := NewHTTPSUL(interfaces.HTTPTarget{
		BaseURL: srv.URL,
		Symbols: map[string]interfaces.Endpoint{"data": {Path: "/data"}},
	}, quietLogger())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Pre(ctx))
	assert.NotEmpty(t, h.Session())
	out, err := h.Step(ctx, "data")
	require.NoError(t, err)
	assert.Equal(t, "401", out)

	_, err = h.Step(ctx, "missing")
	assert.Error(t, err)
}

func TestHTTPSULResetFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, err := NewHTTPSUL(interfaces.HTTPTarget{
		BaseURL: srv.URL,
		Reset:   &interfaces.Endpoint{Method: interfaces.HTTPMethodDELETE, Path: "/state"},
		Symbols: map[string]interfaces.Endpoint{"x": {Path: "/x"}},
	}, quietLogger())
	require.NoError(t, err)
	assert.Error(t, h.Pre(context.Background()))
}

func TestNewBrowserSULValidation(t *testing.T) {
	_, err := NewBrowserSUL(interfaces.BrowserTarget{}, nil)
	assert.Error(t, err)

	b, err := NewBrowserSUL(interfaces.BrowserTarget{StartURL: "http://localhost"}, nil)
	require.NoError(t, err)
	_, err = b.Step(context.Background(), "anything")
	assert.Error(t, err)
	assert.Error(t, b.Pre(context.Background()), "browser not started")
}

const simulatedYAML = `
name: parity
kind: simulated
alphabet: [a, b]
simulated:
  states: [even, odd]
  accepting: [even]
  transitions:
    - {from: even, input: a, output: "1", to: odd}
    - {from: even, input: b, output: "0", to: even}
    - {from: odd, input: a, output: "0", to: even}
    - {from: odd, input: b, output: "1", to: odd}
`

func TestLoadSimulatedTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parity.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simulatedYAML), 0o644))

	target, err := LoadTarget(path)
	require.NoError(t, err)
	assert.Equal(t, KindSimulated, target.Kind)
	assert.Equal(t, []string{"a", "b"}, target.Alphabet)

	d, err := target.Simulated.DFA()
	require.NoError(t, err)
	ok, err := d.Accepts(automata.WordOf("a", "b", "a"))
	require.NoError(t, err)
	assert.True(t, ok)

	m, err := target.Simulated.Mealy()
	require.NoError(t, err)
	out, err := m.Output(automata.WordOf("a", "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, automata.WordOf("1", "0", "0"), out)
}

func TestParseTargetDefaults(t *testing.T) {
	target, err := ParseTarget([]byte(`
kind: http
http:
  base_url: http://localhost:8080
  timeout: 3s
  symbols:
    logout: {method: POST, path: /logout}
    login: {method: POST, path: /login}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"login", "logout"}, target.Alphabet)
	assert.Equal(t, 3*time.Second, target.HTTP.Timeout)
}

func TestParseTargetErrors(t *testing.T) {
	cases := map[string]string{
		"unknown kind":    "kind: ftp\nalphabet: [a]",
		"missing section": "kind: process\nalphabet: [a]",
		"empty alphabet":  "kind: process\nprocess: {command: cat}",
		"no states":       "kind: simulated\nalphabet: [a]\nsimulated: {states: []}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseTarget([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSimulatedTargetErrors(t *testing.T) {
	s := &SimulatedTarget{
		States:      []string{"q0"},
		Transitions: []Transition{{From: "q0", Input: "a", To: "q9"}},
	}
	_, err := s.DFA()
	assert.Error(t, err)

	s = &SimulatedTarget{States: []string{"q0", "q0"}}
	_, err = s.Mealy()
	assert.Error(t, err)
}
