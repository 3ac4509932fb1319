// Package logging provides the structured logging interface shared by the
// device, the server and the command-line front-ends. The only backend is
// zerolog; components receive a Logger and never touch zerolog directly.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the unified logging interface used across the application.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Error logs an error message with the associated error.
	Error(msg string, err error, fields ...Field)

	// Debug logs a debug message.
	Debug(msg string, fields ...Field)

	// Printf provides compatibility with the standard log.Logger Printf method.
	Printf(format string, args ...any)

	// With returns a child logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// ZerologAdapter adapts a zerolog.Logger to the Logger interface.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter creates a new Logger backed by zerolog.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewDefaultLogger creates a Logger writing JSON lines to stderr.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(os.Stderr).With().Timestamp().Logger(),
	)
}

// NewLogger creates a Logger writing to w, tagging every entry with the
// component name. Entries below level are dropped.
func NewLogger(w io.Writer, component string, level zerolog.Level) *ZerologAdapter {
	return NewZerologAdapter(
		zerolog.New(w).Level(level).With().Str("component", component).Timestamp().Logger(),
	)
}

// NewConsoleLogger creates a human-readable Logger for interactive use.
func NewConsoleLogger(w io.Writer, component string, level zerolog.Level) *ZerologAdapter {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return NewLogger(out, component, level)
}

// Nop returns a Logger that discards everything.
func Nop() *ZerologAdapter {
	return NewZerologAdapter(zerolog.Nop())
}

func applyFields(ctx zerolog.Context, fields []Field) zerolog.Context {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			ctx = ctx.Str(f.Key, v)
		case int:
			ctx = ctx.Int(f.Key, v)
		case int64:
			ctx = ctx.Int64(f.Key, v)
		case uint64:
			ctx = ctx.Uint64(f.Key, v)
		case time.Duration:
			ctx = ctx.Dur(f.Key, v)
		case error:
			ctx = ctx.AnErr(f.Key, v)
		default:
			ctx = ctx.Interface(f.Key, v)
		}
	}
	return ctx
}

func (z *ZerologAdapter) applyFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			event = event.Str(f.Key, v)
		case int:
			event = event.Int(f.Key, v)
		case int64:
			event = event.Int64(f.Key, v)
		case uint64:
			event = event.Uint64(f.Key, v)
		case float64:
			event = event.Float64(f.Key, v)
		case time.Duration:
			event = event.Dur(f.Key, v)
		case error:
			event = event.Err(v)
		case bool:
			event = event.Bool(f.Key, v)
		default:
			event = event.Interface(f.Key, v)
		}
	}
	return event
}

// Info logs an informational message.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	z.applyFields(z.logger.Info(), fields).Msg(msg)
}

// Error logs an error message.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	z.applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

// Debug logs a debug message.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	z.applyFields(z.logger.Debug(), fields).Msg(msg)
}

// Printf provides compatibility with standard log.Printf.
func (z *ZerologAdapter) Printf(format string, args ...any) {
	z.logger.Info().Msgf(format, args...)
}

// With returns a child logger carrying fields.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	return NewZerologAdapter(applyFields(z.logger.With(), fields).Logger())
}

// Write lets the adapter serve as the output of a standard library logger,
// such as http.Server.ErrorLog. Each write becomes one error entry.
func (z *ZerologAdapter) Write(p []byte) (int, error) {
	n := len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	z.logger.Error().Msg(string(p))
	return n, nil
}
