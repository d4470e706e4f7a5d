/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: suite.go
Description: Test result registry shared by package test suites. Each suite
records named test outcomes and durations and, when a metrics directory is
configured through the environment, writes a JSON summary after the run.
*/

package utils

import (
	"fmt"
	"os"
	"sync"
	"testing"
	"time"
)

// TestResult is one recorded test outcome
type TestResult struct {
	Name       string  `json:"name"`
	Passed     bool    `json:"passed"`
	Error      string  `json:"error,omitempty"`
	DurationMs float64 `json:"duration_ms"`
}

// SuiteRecorder collects results for one package suite
type SuiteRecorder struct {
	name    string
	version string
	start   time.Time

	mu      sync.Mutex
	results []TestResult
}

// NewSuiteRecorder creates a recorder for a named suite
func NewSuiteRecorder(name, version string) *SuiteRecorder {
	return &SuiteRecorder{name: name, version: version, start: time.Now()}
}

// Run executes testFunc and records its outcome under name
func (r *SuiteRecorder) Run(t *testing.T, name string, testFunc func(t *testing.T)) {
	start := time.Now()
	var errMsg string
	passed := true
	defer func() {
		if rec := recover(); rec != nil {
			errMsg = fmt.Sprintf("panic: %v", rec)
			passed = false
		}
		r.record(TestResult{
			Name:       name,
			Passed:     passed && !t.Failed(),
			Error:      errMsg,
			DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
		})
		if errMsg != "" {
			t.Fatal(errMsg)
		}
	}()
	testFunc(t)
}

func (r *SuiteRecorder) record(res TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Summary returns the suite summary
func (r *SuiteRecorder) Summary() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	end := time.Now()
	passed := 0
	for _, res := range r.results {
		if res.Passed {
			passed++
		}
	}
	return map[string]interface{}{
		"suite":            r.name,
		"version":          r.version,
		"total_tests":      len(r.results),
		"passed":           passed,
		"failed":           len(r.results) - passed,
		"start_time":       r.start.Format(time.RFC3339),
		"end_time":         end.Format(time.RFC3339),
		"duration_seconds": end.Sub(r.start).Seconds(),
		"tests":            append([]TestResult(nil), r.results...),
	}
}

// Flush writes the summary when the metrics directory is configured
func (r *SuiteRecorder) Flush() {
	if os.Getenv(MetricsDirEnv) == "" {
		return
	}
	path, err := WriteMetricsResult(MetricsBaseDir(), r.name, r.version, r.Summary())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write %s metrics: %v\n", r.name, err)
		return
	}
	fmt.Printf("%s metrics written to %s\n", r.name, path)
}

// RunSuite runs m and flushes the recorder; used from TestMain
func RunSuite(m *testing.M, r *SuiteRecorder) int {
	code := m.Run()
	r.Flush()
	return code
}
