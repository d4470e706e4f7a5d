/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: api.go
Description: Target descriptions for network and browser systems under learning.
Maps abstract input symbols to concrete HTTP requests or browser actions, and
describes how concrete responses are abstracted back into output symbols.
*/

package interfaces

import "time"

// HTTPMethod represents HTTP methods for endpoint symbols
type HTTPMethod string

const (
	HTTPMethodGET    HTTPMethod = "GET"
	HTTPMethodPOST   HTTPMethod = "POST"
	HTTPMethodPUT    HTTPMethod = "PUT"
	HTTPMethodDELETE HTTPMethod = "DELETE"
	HTTPMethodPATCH  HTTPMethod = "PATCH"
)

// Endpoint is the concrete request behind one input symbol
type Endpoint struct {
	Method  HTTPMethod        `yaml:"method" json:"method"`
	Path    string            `yaml:"path" json:"path"`
	Body    string            `yaml:"body,omitempty" json:"body,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// HTTPTarget describes a web API learned symbol by symbol
type HTTPTarget struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Reset is requested at the start of every query when set
	Reset     *Endpoint           `yaml:"reset,omitempty" json:"reset,omitempty"`
	Symbols   map[string]Endpoint `yaml:"symbols" json:"symbols"`
	Selector  string              `yaml:"selector,omitempty" json:"selector,omitempty"`
	Timeout   time.Duration       `yaml:"timeout" json:"timeout"`
	RateLimit float64             `yaml:"rate_limit" json:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int                 `yaml:"burst" json:"burst"`
}

// ActionKind is the kind of browser interaction behind a symbol
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionClick    ActionKind = "click"
	ActionEval     ActionKind = "eval"
)

// Action is the concrete browser interaction behind one input symbol
type Action struct {
	Kind   ActionKind `yaml:"kind" json:"kind"`
	Target string     `yaml:"target" json:"target"`
}

// BrowserTarget describes a web application learned through a headless browser
type BrowserTarget struct {
	StartURL string            `yaml:"start_url" json:"start_url"`
	Symbols  map[string]Action `yaml:"symbols" json:"symbols"`
	// Observe is the selector whose text becomes the output of each step
	Observe  string        `yaml:"observe" json:"observe"`
	Headless bool          `yaml:"headless" json:"headless"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// ProcessTarget describes a local program speaking a line protocol
type ProcessTarget struct {
	Command     string        `yaml:"command" json:"command"`
	Args        []string      `yaml:"args,omitempty" json:"args,omitempty"`
	StepTimeout time.Duration `yaml:"step_timeout" json:"step_timeout"`
}
