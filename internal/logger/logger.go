// Package logger provides a small leveled logger. Levels are off,
// normal (info/warn/error) and verbose (adds debug). Child loggers
// created with With share the parent's level and output and prefix
// every line with a component name. Safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
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

// String returns the flag spelling of the level.
func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelVerbose:
		return "verbose"
	default:
		return "normal"
	}
}

// ParseLevel maps "off", "normal" or "verbose" (case-insensitive) to a
// Level. "quiet" and "debug" are accepted as aliases.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "quiet":
		return LevelOff, nil
	case "", "normal", "info":
		return LevelNormal, nil
	case "verbose", "debug":
		return LevelVerbose, nil
	}
	return LevelNormal, fmt.Errorf("unknown log level %q", s)
}

type sink struct {
	mu     sync.RWMutex
	level  Level
	debug  *log.Logger
	info   *log.Logger
	warn   *log.Logger
	errLog *log.Logger
}

// Logger is a leveled logger.
type Logger struct {
	s      *sink
	prefix string
}

// New creates a logger with the given level, writing to out.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}

	flags := log.Ltime

	return &Logger{s: &sink{
		level:  level,
		debug:  log.New(out, "[DBG] ", flags),
		info:   log.New(out, "[INF] ", flags),
		warn:   log.New(out, "[WRN] ", flags),
		errLog: log.New(out, "[ERR] ", flags),
	}}
}

// With returns a child logger whose lines start with "component: ".
func (l *Logger) With(component string) *Logger {
	return &Logger{s: l.s, prefix: l.prefix + component + ": "}
}

// SetLevel changes the log level at runtime for l and all its children.
func (l *Logger) SetLevel(level Level) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.s.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.s.level
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	l.output(LevelVerbose, l.s.debug, format, args)
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	l.output(LevelNormal, l.s.info, format, args)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.output(LevelNormal, l.s.warn, format, args)
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	l.output(LevelNormal, l.s.errLog, format, args)
}

func (l *Logger) output(min Level, dst *log.Logger, format string, args []any) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	if l.s.level >= min {
		dst.Output(3, l.prefix+fmt.Sprintf(format, args...))
	}
}
