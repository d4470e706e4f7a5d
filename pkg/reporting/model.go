/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: model.go
Description: Portable description of learned models. Acceptors and transducers
are flattened into a list of numbered states and labelled transitions that can
be written as JSON, YAML or Graphviz DOT.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"gopkg.in/yaml.v3"
)

// Model kinds
const (
	KindDFA   = "dfa"
	KindMealy = "mealy"
)

// TransitionExport is one labelled edge
type TransitionExport struct {
	From   int    `json:"from" yaml:"from"`
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	To     int    `json:"to" yaml:"to"`
}

// ModelExport is a flattened automaton
type ModelExport struct {
	Name        string             `json:"name,omitempty" yaml:"name,omitempty"`
	Kind        string             `json:"kind" yaml:"kind"`
	Alphabet    []string           `json:"alphabet" yaml:"alphabet"`
	States      int                `json:"states" yaml:"states"`
	Initial     int                `json:"initial" yaml:"initial"`
	Accepting   []int              `json:"accepting,omitempty" yaml:"accepting,omitempty"`
	Transitions []TransitionExport `json:"transitions" yaml:"transitions"`
}

func symbols[I comparable](alphabet []I) []string {
	out := make([]string, len(alphabet))
	for i, a := range alphabet {
		out[i] = fmt.Sprint(a)
	}
	return out
}

// FromDFA flattens an acceptor over alphabet
func FromDFA[I comparable](d *automata.DFA[I], alphabet []I) *ModelExport {
	m := &ModelExport{
		Kind:     KindDFA,
		Alphabet: symbols(alphabet),
		States:   d.Size(),
		Initial:  d.Initial(),
	}
	for s := 0; s < d.Size(); s++ {
		if d.IsAccepting(s) {
			m.Accepting = append(m.Accepting, s)
		}
		for i, a := range alphabet {
			if to, ok := d.Successor(s, a); ok {
				m.Transitions = append(m.Transitions, TransitionExport{From: s, Input: m.Alphabet[i], To: to})
			}
		}
	}
	return m
}

// FromMealy flattens a transducer over alphabet
func FromMealy[I comparable, O comparable](t *automata.Mealy[I, O], alphabet []I) *ModelExport {
	m := &ModelExport{
		Kind:     KindMealy,
		Alphabet: symbols(alphabet),
		States:   t.Size(),
		Initial:  t.Initial(),
	}
	for s := 0; s < t.Size(); s++ {
		for i, a := range alphabet {
			if to, out, ok := t.Step(s, a); ok {
				m.Transitions = append(m.Transitions, TransitionExport{
					From: s, Input: m.Alphabet[i], Output: fmt.Sprint(out), To: to,
				})
			}
		}
	}
	return m
}

// WriteJSON writes m as indented JSON
func (m *ModelExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteYAML writes m as YAML
func (m *ModelExport) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	return enc.Close()
}

// WriteDOT writes m as a Graphviz digraph. Parallel edges are merged into one
// edge with all labels.
func (m *ModelExport) WriteDOT(w io.Writer) error {
	_, err := io.WriteString(w, m.DOT())
	return err
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// DOT renders m as a Graphviz digraph
func (m *ModelExport) DOT() string {
	var b strings.Builder
	name := m.Name
	if name == "" {
		name = "hypothesis"
	}
	fmt.Fprintf(&b, "digraph %q {\n", name)
	b.WriteString("  rankdir=LR;\n  __start [shape=point];\n")

	accepting := make(map[int]bool, len(m.Accepting))
	for _, s := range m.Accepting {
		accepting[s] = true
	}
	for s := 0; s < m.States; s++ {
		shape := "circle"
		if accepting[s] {
			shape = "doublecircle"
		}
		fmt.Fprintf(&b, "  s%d [shape=%s label=\"%d\"];\n", s, shape, s)
	}
	fmt.Fprintf(&b, "  __start -> s%d;\n", m.Initial)

	type edge struct{ from, to int }
	labels := make(map[edge][]string)
	var order []edge
	for _, t := range m.Transitions {
		e := edge{t.From, t.To}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		label := t.Input
		if m.Kind == KindMealy {
			label += " / " + t.Output
		}
		labels[e] = append(labels[e], label)
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].from != order[j].from {
			return order[i].from < order[j].from
		}
		return order[i].to < order[j].to
	})
	for _, e := range order {
		parts := make([]string, len(labels[e]))
		for i, l := range labels[e] {
			parts[i] = dotEscaper.Replace(l)
		}
		fmt.Fprintf(&b, "  s%d -> s%d [label=\"%s\"];\n", e.from, e.to, strings.Join(parts, `\n`))
	}
	b.WriteString("}\n")
	return b.String()
}

// Output formats understood by Write
const (
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// Write writes m in the given text format
func (m *ModelExport) Write(w io.Writer, format string) error {
	switch format {
	case FormatDOT:
		return m.WriteDOT(w)
	case FormatJSON:
		return m.WriteJSON(w)
	case FormatYAML:
		return m.WriteYAML(w)
	default:
		return fmt.Errorf("unsupported model format %q", format)
	}
}
