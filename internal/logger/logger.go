// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). The logger is safe for concurrent use.
//
// Output is produced by zerolog. Console mode renders human-readable lines,
// otherwise each entry is a JSON object.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelOff:
		return zerolog.Disabled
	case LevelVerbose:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Option configures the logger.
type Option func(*options)

type options struct {
	console bool
}

// WithConsole renders entries as human-readable lines instead of JSON.
func WithConsole() Option {
	return func(o *options) { o.console = true }
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	mu    sync.RWMutex
	level Level
	zl    zerolog.Logger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer, opts ...Option) *Logger {
	if out == nil {
		out = os.Stderr
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: true}
	}

	return &Logger{
		level: level,
		zl:    zerolog.New(out).Level(level.zerolog()).With().Timestamp().Logger(),
	}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Zerolog returns the underlying zerolog logger for middleware that wants
// structured fields.
func (l *Logger) Zerolog() zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.zl
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	l.emit(zerolog.DebugLevel, format, args)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.emit(zerolog.InfoLevel, format, args)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.emit(zerolog.WarnLevel, format, args)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.emit(zerolog.ErrorLevel, format, args)
}

func (l *Logger) emit(level zerolog.Level, format string, args []any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if e := l.zl.WithLevel(level); e != nil {
		e.Msg(fmt.Sprintf(format, args...))
	}
}
