/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Console formatters for the Akaylee Learner. CustomFormatter prints
one compact line per entry with sorted fields; LearnerFormatter adds a tag for
learning events and shortens long words.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	colorReset   = "\033[0m"
	colorRed     = 31
	colorGreen   = 32
	colorYellow  = 33
	colorBlue    = 34
	colorMagenta = 35
	colorCyan    = 36
	colorWhite   = 37
)

// CustomFormatter writes compact single-line entries
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

func (f *CustomFormatter) paint(color int, s string) string {
	if !f.Colors {
		return s
	}
	return fmt.Sprintf("\033[%dm%s%s", color, s, colorReset)
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, "", f.formatValue), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, tag string, value func(string, interface{}) string) []byte {
	var out strings.Builder
	if f.Timestamp {
		out.WriteString(f.paint(colorCyan, entry.Time.Format("2006-01-02 15:04:05.000")))
		out.WriteByte(' ')
	}
	out.WriteString(f.paint(levelColor(entry.Level), strings.ToUpper(entry.Level.String())))
	out.WriteByte(' ')
	if tag != "" {
		out.WriteString(f.paint(colorMagenta, "["+tag+"]"))
		out.WriteByte(' ')
	}
	if f.Caller && entry.HasCaller() {
		out.WriteString(f.paint(colorYellow, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)))
		out.WriteByte(' ')
	}
	out.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.WriteByte(' ')
		out.WriteString(f.paint(colorBlue, k))
		out.WriteByte('=')
		out.WriteString(f.paint(colorGreen, value(k, entry.Data[k])))
	}
	out.WriteByte('\n')
	return []byte(out.String())
}

func levelColor(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return colorGreen
	case logrus.WarnLevel:
		return colorYellow
	case logrus.ErrorLevel:
		return colorRed
	case logrus.FatalLevel, logrus.PanicLevel:
		return colorMagenta
	default:
		return colorWhite
	}
}

func (f *CustomFormatter) formatValue(_ string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case error:
		return v.Error()
	case string:
		if len(v) > 50 {
			return v[:50] + "..."
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// LearnerFormatter tags learning events
type LearnerFormatter struct {
	CustomFormatter
	// MaxWordLength truncates counterexamples; zero means 40 characters
	MaxWordLength int
}

// Format formats a log entry with a learning event tag
func (f *LearnerFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, learnerTag(entry.Message), f.formatLearnerValue), nil
}

func learnerTag(message string) string {
	switch {
	case strings.HasPrefix(message, "Round"):
		return "ROUND"
	case strings.HasPrefix(message, "Counterexample"), strings.HasPrefix(message, "No counterexample"):
		return "EQ"
	case strings.HasPrefix(message, "Hypothesis"):
		return "HYP"
	case strings.HasPrefix(message, "Query"):
		return "MQ"
	case strings.HasPrefix(message, "Alphabet"):
		return "SIGMA"
	case strings.HasPrefix(message, "Learning"):
		return "DONE"
	default:
		return ""
	}
}

func (f *LearnerFormatter) formatLearnerValue(key string, value interface{}) string {
	switch key {
	case "counterexample":
		if s, ok := value.(string); ok {
			limit := f.MaxWordLength
			if limit <= 0 {
				limit = 40
			}
			if len(s) > limit {
				return s[:limit] + "..."
			}
			return s
		}
	case "queries_per_sec":
		if v, ok := value.(float64); ok {
			return fmt.Sprintf("%.2f/sec", v)
		}
	}
	return f.formatValue(key, value)
}
