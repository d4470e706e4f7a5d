/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils_test.go
Description: Tests for the metrics writer and suite recorder.
*/

package utils_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/akaylee-learner/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMetricsResult(t *testing.T) {
	dir := t.TempDir()
	path, err := utils.WriteMetricsResult(dir, "learner", "1.0.0", map[string]int{"states": 4})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "learner"), filepath.Dir(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 4, got["states"])
}

func TestSuiteRecorder(t *testing.T) {
	r := utils.NewSuiteRecorder("unit", "1.0.0")
	r.Run(t, "passing", func(t *testing.T) {
		assert.True(t, true)
	})
	summary := r.Summary()
	assert.Equal(t, 1, summary["total_tests"])
	assert.Equal(t, 1, summary["passed"])
}

func TestMetricsBaseDir(t *testing.T) {
	t.Setenv(utils.MetricsDirEnv, "/tmp/akaylee-metrics")
	assert.Equal(t, "/tmp/akaylee-metrics", utils.MetricsBaseDir())
	t.Setenv(utils.MetricsDirEnv, "")
	assert.Equal(t, "metrics", utils.MetricsBaseDir())
}
