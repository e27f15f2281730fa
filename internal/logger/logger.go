// Package logger is the structured logging facade used across the API,
// the stores and the CLI. It wraps zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Fields are structured key/value pairs attached to one entry.
type Fields = map[string]interface{}

// Logger wraps zerolog.Logger.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger writing to stdout for the given environment.
func New(env string) *Logger {
	return NewWithOutput(env, os.Stdout)
}

// NewWithOutput creates a Logger writing to out. Development gets
// human-readable console lines at debug level; every other environment
// gets one JSON object per line at info level.
func NewWithOutput(env string, out io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = out
	level := zerolog.InfoLevel
	if env == "development" {
		// Colour only when writing to the terminal's stdout.
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}
		level = zerolog.DebugLevel
	}

	return &Logger{zlog: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func write(event *zerolog.Event, msg string, fields Fields) {
	if event == nil {
		return
	}
	event.Fields(fields).Msg(msg)
}

func (l *Logger) Debug(msg string, fields Fields) { write(l.zlog.Debug(), msg, fields) }

func (l *Logger) Info(msg string, fields Fields) { write(l.zlog.Info(), msg, fields) }

func (l *Logger) Warn(msg string, fields Fields) { write(l.zlog.Warn(), msg, fields) }

// Error logs msg with err attached. A nil err is omitted.
func (l *Logger) Error(msg string, err error, fields Fields) {
	write(l.zlog.Error().Err(err), msg, fields)
}

// Fatal logs msg and exits the process with status 1.
func (l *Logger) Fatal(msg string, err error, fields Fields) {
	write(l.zlog.Fatal().Err(err), msg, fields)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields Fields) *Logger {
	return &Logger{zlog: l.zlog.With().Fields(fields).Logger()}
}

// WithRequestID returns a child logger tagged with the request id.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("request_id", requestID).Logger()}
}

// Named returns a child logger tagged with the component name, e.g.
// "localstore" or "datasource".
func (l *Logger) Named(component string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", component).Logger()}
}

// GetZerolog returns the underlying zerolog.Logger.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or fallback when there
// is none. Request handlers store the request-scoped logger there.
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	return fallback
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(zlog zerolog.Logger) *Logger {
	return &Logger{zlog: zlog}
}
