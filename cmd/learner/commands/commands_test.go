/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests for the learn and check commands on simulated
targets.
*/

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/kleascm/akaylee-learner/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// turnstile: coin unlocks, push locks; outputs report the action taken
const turnstileYAML = `
name: turnstile
kind: simulated
alphabet: [coin, push]
simulated:
  states: [locked, unlocked]
  accepting: [unlocked]
  transitions:
    - {from: locked, input: coin, output: unlock, to: unlocked}
    - {from: locked, input: push, output: blocked, to: locked}
    - {from: unlocked, input: coin, output: thanks, to: unlocked}
    - {from: unlocked, input: push, output: lock, to: locked}
`

func writeTarget(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "turnstile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(turnstileYAML), 0o644))
	return path
}

func execute(t *testing.T, run func(*cobra.Command, []string) error, args ...string) (string, error) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cmd := &cobra.Command{Use: "test", RunE: run, SilenceUsage: true, SilenceErrors: true}
	AddLearnFlags(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckTransducer(t *testing.T) {
	out, err := execute(t, RunCheck, "--target", writeTarget(t), "--domain", "transducer", "--eq", "complete", "--max-depth", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "turnstile")
	assert.Contains(t, out, "equivalent")
}

func TestCheckAcceptorWithCache(t *testing.T) {
	out, err := execute(t, RunCheck, "--target", writeTarget(t), "--domain", "acceptor", "--cache", "memory", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "equivalent")
}

func TestLearnWritesModel(t *testing.T) {
	output := filepath.Join(t.TempDir(), "model.json")
	_, err := execute(t, RunLearn, "--target", writeTarget(t), "--output", output, "--format", "json", "--cache", "badger",
		"--cache-dir", filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var model reporting.ModelExport
	require.NoError(t, json.Unmarshal(data, &model))
	assert.Equal(t, reporting.KindMealy, model.Kind)
	assert.Equal(t, "turnstile", model.Name)
	assert.Equal(t, 2, model.States)
	assert.Len(t, model.Transitions, 4)
}

func TestLearnWritesHTMLReport(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.html")
	_, err := execute(t, RunLearn, "--target", writeTarget(t), "--output", output, "--format", "html")
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "turnstile - Akaylee Learner Report")
}

func TestLearnRejectsBadConfig(t *testing.T) {
	_, err := execute(t, RunLearn, "--target", writeTarget(t), "--domain", "pushdown")
	assert.Error(t, err)

	_, err = execute(t, RunLearn, "--target", writeTarget(t), "--kind", "http")
	assert.Error(t, err)

	_, err = execute(t, RunLearn, "--target", writeTarget(t), "--cache", "floppy")
	assert.Error(t, err)
}

func TestRenderSummaryReportsStatus(t *testing.T) {
	s := RenderSummary(reporting.RunSummary{Target: "t", Domain: "acceptor", States: 3, Rounds: 2}, monitoring.LearningStats{})
	assert.Contains(t, s, "round limit reached")
	assert.Contains(t, s, "States")
}
