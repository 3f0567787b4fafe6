// Copyright (c) 2025 keyviz contributors
// SPDX-License-Identifier: MIT

package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kvoverlay/keyviz/internal/platform"
)

// LogLevel represents the level of logging
type LogLevel int

const (
	// Debug log level
	DebugLevel LogLevel = iota
	// Info log level
	InfoLevel
	// Warning log level
	WarningLevel
	// Error log level
	ErrorLevel
)

// Logger interface defines methods for logging at different levels
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warning(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Config contains logger configuration
type Config struct {
	Level LogLevel
	File  string
}

// repeatWindow bounds how often an identical message is actually
// written. The frame scheduler ticks at 60Hz (spec.md §4.5) and a
// sustained condition — a stuck buffer pool, a compositor that never
// acks a configure — would otherwise write the same line thousands of
// times a minute; the teacher's daemon never needed this since its
// log call sites fire at most a few times a second.
const repeatWindow = 2 * time.Second

// DefaultLogger implements the Logger interface using the standard log package
type DefaultLogger struct {
	level    LogLevel
	stdFlags int

	mu         sync.Mutex
	lastMsg    string
	lastAt     time.Time
	suppressed int
}

// NewDefaultLogger creates a new default logger with the specified log level
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		level:    level,
		stdFlags: log.LstdFlags | log.Lshortfile,
	}
}

// Configure sets up the logger with given configuration
func Configure(config Config) (*DefaultLogger, error) {
	logger := NewDefaultLogger(config.Level)
	log.SetFlags(logger.stdFlags)

	// If log file is specified, set up file logging
	if config.File != "" {
		dir := filepath.Dir(config.File)
		if err := platform.EnsureDirectoryExists(dir); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
		// Try to open the log file
		f, err := os.OpenFile(config.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.File, err)
		}
		log.SetOutput(f)
	}

	return logger, nil
}

// emit writes one already-formatted line, collapsing runs of an
// identical message within repeatWindow down to a single "repeated Nx"
// summary instead of a line per occurrence.
func (l *DefaultLogger) emit(prefix, msg string) {
	l.mu.Lock()
	now := time.Now()
	if msg == l.lastMsg && now.Sub(l.lastAt) < repeatWindow {
		l.suppressed++
		l.lastAt = now
		l.mu.Unlock()
		return
	}
	suppressed := l.suppressed
	l.lastMsg = msg
	l.lastAt = now
	l.suppressed = 0
	l.mu.Unlock()

	if suppressed > 0 {
		log.Printf("%s (previous line repeated %d more times)", prefix, suppressed)
	}
	log.Printf("%s %s", prefix, msg)
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(format string, args ...interface{}) {
	if l.level <= DebugLevel {
		l.emit("[DEBUG]", fmt.Sprintf(format, args...))
	}
}

// Info logs an informational message
func (l *DefaultLogger) Info(format string, args ...interface{}) {
	if l.level <= InfoLevel {
		l.emit("[INFO]", fmt.Sprintf(format, args...))
	}
}

// Warning logs a warning message
func (l *DefaultLogger) Warning(format string, args ...interface{}) {
	if l.level <= WarningLevel {
		l.emit("[WARNING]", fmt.Sprintf(format, args...))
	}
}

// Error logs an error message
func (l *DefaultLogger) Error(format string, args ...interface{}) {
	if l.level <= ErrorLevel {
		l.emit("[ERROR]", fmt.Sprintf(format, args...))
	}
}
