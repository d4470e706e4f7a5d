/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: target.go
Description: YAML target files. A target file names the kind of system to
learn, its input alphabet and the driver settings for that kind.
*/

package sul

import (
	"fmt"
	"os"
	"sort"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"gopkg.in/yaml.v3"
)

// Kind selects the driver for a target
type Kind string

const (
	KindProcess   Kind = "process"
	KindHTTP      Kind = "http"
	KindBrowser   Kind = "browser"
	KindSimulated Kind = "simulated"
)

// Transition is one edge of a simulated machine. Output is ignored for
// acceptors.
type Transition struct {
	From   string `yaml:"from"`
	Input  string `yaml:"input"`
	Output string `yaml:"output,omitempty"`
	To     string `yaml:"to"`
}

// SimulatedTarget is a machine given explicitly in the target file. The
// first state listed is initial.
type SimulatedTarget struct {
	States      []string     `yaml:"states"`
	Accepting   []string     `yaml:"accepting,omitempty"`
	Transitions []Transition `yaml:"transitions"`
}

// Target is a parsed target file
type Target struct {
	Name      string                    `yaml:"name"`
	Kind      Kind                      `yaml:"kind"`
	Alphabet  []string                  `yaml:"alphabet"`
	Process   *interfaces.ProcessTarget `yaml:"process,omitempty"`
	HTTP      *interfaces.HTTPTarget    `yaml:"http,omitempty"`
	Browser   *interfaces.BrowserTarget `yaml:"browser,omitempty"`
	Simulated *SimulatedTarget          `yaml:"simulated,omitempty"`
}

// LoadTarget reads and validates a target file
func LoadTarget(path string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target file: %w", err)
	}
	return ParseTarget(data)
}

// ParseTarget decodes and validates a target description
func ParseTarget(data []byte) (*Target, error) {
	var t Target
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse target: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Target) validate() error {
	switch t.Kind {
	case KindProcess:
		if t.Process == nil {
			return fmt.Errorf("process target requires a process section")
		}
	case KindHTTP:
		if t.HTTP == nil {
			return fmt.Errorf("http target requires an http section")
		}
		if len(t.Alphabet) == 0 {
			t.Alphabet = sortedKeys(t.HTTP.Symbols)
		}
	case KindBrowser:
		if t.Browser == nil {
			return fmt.Errorf("browser target requires a browser section")
		}
		if len(t.Alphabet) == 0 {
			t.Alphabet = sortedKeys(t.Browser.Symbols)
		}
	case KindSimulated:
		if t.Simulated == nil || len(t.Simulated.States) == 0 {
			return fmt.Errorf("simulated target requires at least one state")
		}
	default:
		return fmt.Errorf("unknown target kind %q", t.Kind)
	}
	if len(t.Alphabet) == 0 {
		return fmt.Errorf("target %q has an empty alphabet", t.Name)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SimulatedTarget) index() (map[string]int, error) {
	ids := make(map[string]int, len(s.States))
	for i, name := range s.States {
		if _, dup := ids[name]; dup {
			return nil, fmt.Errorf("duplicate state %q", name)
		}
		ids[name] = i
	}
	for _, tr := range s.Transitions {
		if _, ok := ids[tr.From]; !ok {
			return nil, fmt.Errorf("transition from unknown state %q", tr.From)
		}
		if _, ok := ids[tr.To]; !ok {
			return nil, fmt.Errorf("transition to unknown state %q", tr.To)
		}
	}
	return ids, nil
}

// DFA builds the acceptor described by s
func (s *SimulatedTarget) DFA() (*automata.DFA[string], error) {
	ids, err := s.index()
	if err != nil {
		return nil, err
	}
	accepting := make(map[string]bool, len(s.Accepting))
	for _, name := range s.Accepting {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("unknown accepting state %q", name)
		}
		accepting[name] = true
	}
	d := automata.NewDFA[string]()
	for _, name := range s.States {
		d.AddState(accepting[name])
	}
	for _, tr := range s.Transitions {
		if err := d.SetTransition(ids[tr.From], tr.Input, ids[tr.To]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Mealy builds the transducer described by s
func (s *SimulatedTarget) Mealy() (*automata.Mealy[string, string], error) {
	ids, err := s.index()
	if err != nil {
		return nil, err
	}
	m := automata.NewMealy[string, string]()
	for range s.States {
		m.AddState()
	}
	for _, tr := range s.Transitions {
		if err := m.SetTransition(ids[tr.From], tr.Input, tr.Output, ids[tr.To]); err != nil {
			return nil, err
		}
	}
	return m, nil
}
