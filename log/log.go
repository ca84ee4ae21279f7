// Package log provides structured logging with filesystem-based persistence.
package log

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pitchloop/pitchloop/filesystem"
	"github.com/pitchloop/pitchloop/key"
	"github.com/pitchloop/pitchloop/where"
	logrus "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// enabled indicates the persistent logging state for the active application instance.
var enabled bool

// Setup initializes the logging subsystem, including file handles, formatting, and severity levels based on global configuration.
// When logging is disabled all subsequent log emissions are silently discarded,
// since the TUI owns the terminal and stderr output would corrupt it.
func Setup() error {
	enabled = viper.GetBool(key.LogsWrite)
	if !enabled {
		return nil
	}

	dir := where.Logs()
	if dir == "" {
		return errors.New("log directory path is empty")
	}

	filename := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, filename)

	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logrus.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	parsed, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return nil
}

// Fields is an alias so callers don't need to import logrus for structured entries.
type Fields = logrus.Fields

// Entry is a scoped logger carrying a fixed set of fields.
type Entry struct {
	fields Fields
}

// With returns a scoped logger that attaches fields to every emission.
func With(fields Fields) *Entry {
	return &Entry{fields: fields}
}

func (e *Entry) Infof(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Infof(format, args...)
	}
}

func (e *Entry) Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Warnf(format, args...)
	}
}

func (e *Entry) Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Errorf(format, args...)
	}
}

func (e *Entry) Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.WithFields(e.fields).Debugf(format, args...)
	}
}

// Severity-Specific Log Emissions - these functions proxy messages to the configured backend when logging is enabled.

func Error(args ...interface{}) {
	if enabled {
		logrus.Error(args...)
	}
}
func Errorf(format string, args ...interface{}) {
	if enabled {
		logrus.Errorf(format, args...)
	}
}
func Warn(args ...interface{}) {
	if enabled {
		logrus.Warn(args...)
	}
}
func Warnf(format string, args ...interface{}) {
	if enabled {
		logrus.Warnf(format, args...)
	}
}
func Info(args ...interface{}) {
	if enabled {
		logrus.Info(args...)
	}
}
func Infof(format string, args ...interface{}) {
	if enabled {
		logrus.Infof(format, args...)
	}
}
func Debugf(format string, args ...interface{}) {
	if enabled {
		logrus.Debugf(format, args...)
	}
}
