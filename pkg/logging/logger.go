/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for the Akaylee Learner. Configures a logrus logger
with the chosen level and format, mirrors output into a timestamped file when
an output directory is set, and provides learning-specific log helpers.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON    LogFormat = "json"
	LogFormatText    LogFormat = "text"
	LogFormatCustom  LogFormat = "custom"
	LogFormatLearner LogFormat = "learner"
)

const filePattern = "akaylee-learner_*.log"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level" mapstructure:"level"`
	Format    LogFormat `json:"format" mapstructure:"format"`
	OutputDir string    `json:"output_dir" mapstructure:"output_dir"` // empty disables file output
	MaxFiles  int       `json:"max_files" mapstructure:"max_files"`
	Timestamp bool      `json:"timestamp" mapstructure:"timestamp"`
	Caller    bool      `json:"caller" mapstructure:"caller"`
	Colors    bool      `json:"colors" mapstructure:"colors"`
}

// DefaultLoggerConfig returns console-only text logging at info level
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatText,
		MaxFiles:  10,
		Timestamp: true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
func (c *LoggerConfig) Validate() error {
	if c.OutputDir != "" && c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom, LogFormatLearner:
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// Logger wraps a configured logrus logger
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	fileHandle *os.File
	filePath   string
	startTime  time.Time
}

// NewLogger creates a logger writing to console and, when configured, to a
// file. A nil config uses DefaultLoggerConfig.
func NewLogger(config *LoggerConfig, console io.Writer) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
	}
	level, err := logrus.ParseLevel(string(config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(config.Caller)
	l.logger.SetOutput(console)
	l.setFormatter()

	if err := l.setupFileOutput(console); err != nil {
		return nil, err
	}
	return l, nil
}

func callerPrettyfier(f *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

func (l *Logger) setFormatter() {
	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    l.config.Timestamp,
			TimestampFormat:  time.RFC3339,
			ForceColors:      l.config.Colors,
			DisableColors:    !l.config.Colors,
			CallerPrettyfier: callerPrettyfier,
		})
	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})
	case LogFormatLearner:
		l.logger.SetFormatter(&LearnerFormatter{CustomFormatter: CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		}})
	}
}

func (l *Logger) setupFileOutput(console io.Writer) error {
	if l.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("akaylee-learner_%s.log", timestamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("Logging initialized")
	return nil
}

// cleanup removes the oldest log files beyond MaxFiles
func (l *Logger) cleanup() error {
	if l.config.OutputDir == "" {
		return nil
	}
	files, err := filepath.Glob(filepath.Join(l.config.OutputDir, filePattern))
	if err != nil {
		return err
	}
	if len(files) <= l.config.MaxFiles {
		return nil
	}
	// names embed the creation time
	sort.Strings(files)
	for _, f := range files[:len(files)-l.config.MaxFiles] {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

// FilePath returns the log file path, empty without file output
func (l *Logger) FilePath() string {
	return l.filePath
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// Close closes the log file and prunes old ones
func (l *Logger) Close() error {
	if l.fileHandle != nil {
		l.logger.SetOutput(io.Discard)
		if err := l.fileHandle.Close(); err != nil {
			return err
		}
		l.fileHandle = nil
	}
	if err := l.cleanup(); err != nil {
		return fmt.Errorf("failed to cleanup log files: %w", err)
	}
	return nil
}

// Learning-specific logging methods

// LogRoundStarted logs the start of a refinement round
func (l *Logger) LogRoundStarted(round, states int) {
	l.logger.WithFields(logrus.Fields{
		"round":  round,
		"states": states,
	}).Info("Round started")
}

// LogCounterexample logs a counterexample returned by an equivalence query
func (l *Logger) LogCounterexample(round int, word string, length int) {
	l.logger.WithFields(logrus.Fields{
		"round":          round,
		"counterexample": word,
		"length":         length,
	}).Info("Counterexample found")
}

// LogHypothesis logs a hypothesis snapshot
func (l *Logger) LogHypothesis(round, states, shortPrefixes int) {
	l.logger.WithFields(logrus.Fields{
		"round":          round,
		"states":         states,
		"short_prefixes": shortPrefixes,
	}).Debug("Hypothesis built")
}

// LogQueryStats logs query statistics
func (l *Logger) LogQueryStats(queries, symbols, cacheHits int64) {
	l.logger.WithFields(logrus.Fields{
		"queries":    queries,
		"symbols":    symbols,
		"cache_hits": cacheHits,
		"uptime":     time.Since(l.startTime),
	}).Info("Query statistics")
}

// LogLearningFinished logs the outcome of a run
func (l *Logger) LogLearningFinished(rounds, states int, converged bool, duration time.Duration) {
	entry := l.logger.WithFields(logrus.Fields{
		"rounds":    rounds,
		"states":    states,
		"converged": converged,
		"duration":  duration,
	})
	if converged {
		entry.Info("Learning finished")
	} else {
		entry.Warn("Learning stopped at round limit")
	}
}
