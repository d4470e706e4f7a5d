/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML learning report for the Akaylee Learner. Renders a single
self-contained page with run statistics, the counterexamples of every round,
the transition table and the Graphviz source of the learned model.
*/

package reporting

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/sirupsen/logrus"
)

// RunSummary holds the outcome of a learning run
type RunSummary struct {
	Target          string        `json:"target"`
	Domain          string        `json:"domain"`
	Rounds          int           `json:"rounds"`
	States          int           `json:"states"`
	Converged       bool          `json:"converged"`
	Duration        time.Duration `json:"duration"`
	Counterexamples []string      `json:"counterexamples"`
}

// DashboardData contains all data for report generation
type DashboardData struct {
	Title       string                    `json:"title"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Version     string                    `json:"version"`
	SessionID   string                    `json:"session_id"`
	Run         RunSummary                `json:"run"`
	Stats       *monitoring.LearningStats `json:"stats,omitempty"`
	Model       *ModelExport              `json:"model"`
	DOT         string                    `json:"dot"`
}

// DashboardGenerator renders HTML reports
type DashboardGenerator struct {
	outputDir string
	logger    *logrus.Logger
	templates *template.Template
}

// NewDashboardGenerator creates a report generator writing into outputDir
func NewDashboardGenerator(outputDir string, logger *logrus.Logger) *DashboardGenerator {
	if logger == nil {
		logger = logrus.New()
	}
	return &DashboardGenerator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("dashboard").Funcs(template.FuncMap{
			"inc": func(i int) int { return i + 1 },
		}).Parse(dashboardTemplate)),
	}
}

// NewDashboardData fills in the session metadata for a report
func NewDashboardData(title, version string, run RunSummary, model *ModelExport) *DashboardData {
	return &DashboardData{
		Title:       title,
		GeneratedAt: time.Now(),
		Version:     version,
		SessionID:   uuid.New().String(),
		Run:         run,
		Model:       model,
		DOT:         model.DOT(),
	}
}

// Render writes the report to w
func (dg *DashboardGenerator) Render(w io.Writer, data *DashboardData) error {
	if data.Model == nil {
		return fmt.Errorf("report has no model")
	}
	if data.DOT == "" {
		data.DOT = data.Model.DOT()
	}
	return dg.templates.Execute(w, data)
}

// GenerateDashboard writes the report as <outputDir>/<session>.html and
// returns its path
func (dg *DashboardGenerator) GenerateDashboard(data *DashboardData) (string, error) {
	if err := os.MkdirAll(dg.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	var buf bytes.Buffer
	if err := dg.Render(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	path := filepath.Join(dg.outputDir, data.SessionID+".html")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	dg.logger.WithFields(logrus.Fields{
		"path":    path,
		"session": data.SessionID,
	}).Info("Learning report generated")
	return path, nil
}
