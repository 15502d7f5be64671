package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a deliberately small, framework-agnostic logging interface.
// Components take a Logger and derive child loggers with With.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value any
}

// ZerologLogger implements Logger on top of zerolog and writes JSON lines.
type ZerologLogger struct {
	zl zerolog.Logger
}

// NewLogger creates a logger writing to w at the given level
// (trace|debug|info|warn|error). Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *ZerologLogger {
	zl := zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
	return &ZerologLogger{zl: zl}
}

// NewStdoutLogger creates a debug-level stdout logger tagged with component.
// component is optional.
func NewStdoutLogger(component string) *ZerologLogger {
	l := NewLogger(os.Stdout, "debug")
	if component == "" {
		return l
	}
	return &ZerologLogger{zl: l.zl.With().Str("component", component).Logger()}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// ParseLevel maps a config string onto a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *ZerologLogger) Debug(msg string, fields ...Field) {
	emit(l.zl.Debug(), msg, fields)
}

func (l *ZerologLogger) Info(msg string, fields ...Field) {
	emit(l.zl.Info(), msg, fields)
}

func (l *ZerologLogger) Warn(msg string, fields ...Field) {
	emit(l.zl.Warn(), msg, fields)
}

func (l *ZerologLogger) Error(msg string, fields ...Field) {
	emit(l.zl.Error(), msg, fields)
}

func (l *ZerologLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &ZerologLogger{zl: l.zl.With().Fields(toMap(fields)).Logger()}
}

func emit(ev *zerolog.Event, msg string, fields []Field) {
	if len(fields) > 0 {
		ev = ev.Fields(toMap(fields))
	}
	ev.Msg(msg)
}

func toMap(fields []Field) map[string]any {
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && err != nil {
			m[f.Key] = err.Error()
			continue
		}
		m[f.Key] = f.Value
	}
	return m
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &ZerologLogger{zl: zerolog.Nop()}
}
