/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary.go
Description: Terminal rendering of learning results.
*/

package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/kleascm/akaylee-learner/pkg/reporting"
	"github.com/spf13/cobra"
)

var (
	colorPrimary = lipgloss.Color("#5A67D8")
	colorSuccess = lipgloss.Color("#38A169")
	colorWarning = lipgloss.Color("#DD6B20")
	colorError   = lipgloss.Color("#E53E3E")
	colorMuted   = lipgloss.Color("#718096")
)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Label:   lipgloss.NewStyle().Foreground(colorMuted).Width(22),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1),
}

// RenderSummary formats a run as a bordered table
func RenderSummary(run reporting.RunSummary, stats monitoring.LearningStats) string {
	row := func(label string, value interface{}) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, styles.Label.Render(label), styles.Value.Render(fmt.Sprint(value)))
	}
	status := styles.Success.Render("converged")
	if !run.Converged {
		status = styles.Warning.Render("round limit reached")
	}

	lines := []string{
		styles.Title.Render("Akaylee Learner: " + run.Target),
		"",
		row("Model", run.Domain),
		row("States", run.States),
		row("Rounds", run.Rounds),
		row("Counterexamples", len(run.Counterexamples)),
		row("Membership queries", stats.MembershipQueries),
		row("Query symbols", stats.QuerySymbols),
		row("Cache hits", stats.CacheHits),
		row("Equivalence queries", stats.EquivalenceQueries),
		row("Duration", run.Duration.Round(time.Millisecond)),
		lipgloss.JoinHorizontal(lipgloss.Top, styles.Label.Render("Status"), status),
	}
	return styles.Box.Render(strings.Join(lines, "\n"))
}

// RenderError formats a command failure
func RenderError(err error) string {
	return styles.Error.Render("✗ ") + err.Error()
}

// PrintVersion prints version information
func PrintVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "akaylee-learner %s\n", Version)
}
