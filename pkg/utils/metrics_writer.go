/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Result files for learning runs and test suites. Each result is
stored as indented JSON under <base>/<kind>/ with a timestamped, versioned name.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MetricsDirEnv overrides the metrics base directory
const MetricsDirEnv = "AKAYLEE_METRICS_DIR"

const resultStamp = "2006-01-02_15-04-05"

// MetricsBaseDir returns the configured metrics directory
func MetricsBaseDir() string {
	if dir := os.Getenv(MetricsDirEnv); dir != "" {
		return dir
	}
	return "metrics"
}

// resultName builds names like 2026-10-16_09-30-00_learner_v1.0.0.json
func resultName(kind, version string, at time.Time) string {
	return fmt.Sprintf("%s_%s_v%s.json", at.Format(resultStamp), kind, version)
}

// WriteMetricsResult stores result below baseDir/kind and returns its path
func WriteMetricsResult(baseDir, kind, version string, result interface{}) (string, error) {
	dir := filepath.Join(baseDir, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create result directory %s: %w", dir, err)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode %s result: %w", kind, err)
	}

	path := filepath.Join(dir, resultName(kind, version, time.Now()))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return path, nil
}
