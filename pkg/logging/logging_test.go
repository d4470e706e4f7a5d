/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for logger configuration and formatters.
*/

package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerConfigValidate(t *testing.T) {
	require.NoError(t, DefaultLoggerConfig().Validate())

	c := DefaultLoggerConfig()
	c.Format = "xml"
	assert.Error(t, c.Validate())

	c = DefaultLoggerConfig()
	c.Level = "trace"
	assert.Error(t, c.Validate())

	c = DefaultLoggerConfig()
	c.OutputDir = t.TempDir()
	c.MaxFiles = 0
	assert.Error(t, c.Validate())
}

func TestLoggerWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	dir := t.TempDir()
	l, err := NewLogger(&LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatJSON,
		OutputDir: dir,
		MaxFiles:  5,
	}, &console)
	require.NoError(t, err)

	l.LogCounterexample(2, "a b a", 3)
	path := l.FilePath()
	require.NoError(t, l.Close())

	assert.Contains(t, console.String(), `"counterexample":"a b a"`)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Counterexample found")
}

func TestLoggerPrunesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2020-01-01_00-00-00.000", "2020-01-02_00-00-00.000", "2020-01-03_00-00-00.000"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "akaylee-learner_"+name+".log"), nil, 0644))
	}
	l, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: LogFormatText, OutputDir: dir, MaxFiles: 2}, &bytes.Buffer{})
	require.NoError(t, err)
	current := l.FilePath()
	require.NoError(t, l.Close())

	files, err := filepath.Glob(filepath.Join(dir, filePattern))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Contains(t, files, current)
	assert.NotContains(t, files, filepath.Join(dir, "akaylee-learner_2020-01-01_00-00-00.000.log"))
}

func TestLogLearningFinishedLevel(t *testing.T) {
	var console bytes.Buffer
	l, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: LogFormatCustom}, &console)
	require.NoError(t, err)

	l.LogLearningFinished(3, 4, true, time.Second)
	l.LogLearningFinished(100, 40, false, time.Minute)
	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "INFO Learning finished"))
	assert.True(t, strings.HasPrefix(lines[1], "WARNING Learning stopped"))
}

func TestCustomFormatterSortsFields(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "Round started",
		Data:    logrus.Fields{"states": 3, "round": 2, "duration": 1500 * time.Millisecond},
	}
	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO Round started duration=1.5s round=2 states=3\n", string(out))
}

func TestLearnerFormatterTagsAndTruncates(t *testing.T) {
	f := &LearnerFormatter{MaxWordLength: 5}
	out, err := f.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "Counterexample found",
		Data:    logrus.Fields{"counterexample": "a b a b a b"},
	})
	require.NoError(t, err)
	assert.Equal(t, "INFO [EQ] Counterexample found counterexample=a b a...\n", string(out))

	out, err = f.Format(&logrus.Entry{Level: logrus.DebugLevel, Message: "something else"})
	require.NoError(t, err)
	assert.Equal(t, "DEBUG something else\n", string(out))
}

func TestColorsWrapLevel(t *testing.T) {
	f := &CustomFormatter{Colors: true}
	out, err := f.Format(&logrus.Entry{Level: logrus.ErrorLevel, Message: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "\033[31mERROR\033[0m")
}
