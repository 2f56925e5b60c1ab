// Package logger provides the structured logger used across the wallet
// layer. It wraps logrus so call sites can chain fields without importing
// the logging backend directly.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingConfig controls process-wide log output.
type LoggingConfig struct {
	Level  string
	Format string
}

// Logger is a logrus entry with application defaults applied.
type Logger struct {
	*logrus.Entry
}

// New builds a logger from the provided configuration. Unknown levels fall
// back to info, unknown formats to text.
func New(cfg LoggingConfig) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return &Logger{Entry: logrus.NewEntry(l)}
}

// NewDefault returns an info-level text logger tagged with a component
// name. Services use this when no logger is injected.
func NewDefault(component string) *Logger {
	return New(LoggingConfig{}).WithComponent(component)
}

// WithComponent returns a logger carrying a component field.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}
