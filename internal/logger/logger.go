// Package logger provides leveled logging for partsync.
// Debug and info messages are printed only when verbose mode is enabled via
// the --verbose flag; warnings and errors are always printed. Output goes to
// stderr as human-readable lines or as JSON objects.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how log lines are rendered.
type Format string

const (
	// FormatText renders human-readable console lines.
	FormatText Format = "text"
	// FormatJSON renders one JSON object per line.
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatText
	base              = build()
)

// build creates the zerolog logger from the current settings (caller must hold lock).
func build() zerolog.Logger {
	var w io.Writer = output
	if format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: output, NoColor: true, TimeFormat: time.RFC3339}
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	base = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	base = build()
}

// SetFormat switches between text and JSON output.
// Unknown formats fall back to text.
func SetFormat(f Format) {
	mu.Lock()
	defer mu.Unlock()
	if f != FormatJSON {
		f = FormatText
	}
	format = f
	base = build()
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	l := current()
	l.Debug().Msgf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	l := current()
	l.Info().Msgf("=== %s ===", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	l := current()
	l.Info().Msgf(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	l := current()
	l.Warn().Msgf(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	l := current()
	l.Error().Msgf(format, args...)
}

// Logger tags every message with a component name.
type Logger struct {
	component string
}

// With returns a logger for the named component.
func With(component string) *Logger {
	return &Logger{component: component}
}

// Debug prints a component message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	z := current()
	z.Debug().Str("component", l.component).Msgf(format, args...)
}

// Info prints a component message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	z := current()
	z.Info().Str("component", l.component).Msgf(format, args...)
}

// Warn prints a component warning.
func (l *Logger) Warn(format string, args ...any) {
	z := current()
	z.Warn().Str("component", l.component).Msgf(format, args...)
}

// Error prints a component error.
func (l *Logger) Error(format string, args ...any) {
	z := current()
	z.Error().Str("component", l.component).Msgf(format, args...)
}
