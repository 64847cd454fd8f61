package log

import (
	"context"
	"log/slog"
	"os"
)

// Level represents the severity of a log entry.
type Level int

// Log levels, ordered least to most severe.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level name written in all lower case or all upper
// case ("warning" is accepted as an alias of "warn"). An empty string
// yields InfoLevel; any other name is an error.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel, nil
	case "info", "INFO", "":
		return InfoLevel, nil
	case "warn", "WARN", "warning", "WARNING":
		return WarnLevel, nil
	case "error", "ERROR":
		return ErrorLevel, nil
	default:
		return InfoLevel, &unknownLevelError{s}
	}
}

type unknownLevelError struct{ s string }

func (e *unknownLevelError) Error() string { return "log: unknown level " + e.s }

// Logger is the structured logging interface every eventchannel component
// depends on. Components take a Logger rather than reaching for a global.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a Logger that prepends the given fields to every
	// subsequent entry.
	With(fields ...Field) Logger

	SetLevel(level Level)
	GetLevel() Level
}

// Formatter renders a log record to bytes.
type Formatter interface {
	Format(rec Record) ([]byte, error)
}

// Output writes a formatted record somewhere.
type Output interface {
	Write(formatted []byte) error
}

// Record is the fully-resolved shape of one log entry, passed to a
// Formatter. It mirrors what the slog bridge receives from slog.Record.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// LoggerOption configures a BaseLogger at construction time.
type LoggerOption func(*BaseLogger)

// BaseLogger is the default Logger implementation, backed by slog.
type BaseLogger struct {
	level     *slog.LevelVar
	formatter Formatter
	outputs   []Output
	slog      *slog.Logger
}

// NewLogger builds a Logger from options. With no options, it logs at
// InfoLevel as text to stderr.
func NewLogger(options ...LoggerOption) Logger {
	l := &BaseLogger{
		level:     new(slog.LevelVar),
		formatter: &TextFormatter{},
	}
	for _, opt := range options {
		opt(l)
	}
	if len(l.outputs) == 0 {
		l.outputs = []Output{NewConsoleOutput(os.Stderr)}
	}
	l.slog = slog.New(newBridgeHandler(l))
	return l
}

// WithLevel sets the minimum level a logger emits.
func WithLevel(level Level) LoggerOption {
	return func(l *BaseLogger) { l.level.Set(toSlogLevel(level)) }
}

// WithFormatter sets the record formatter.
func WithFormatter(f Formatter) LoggerOption {
	return func(l *BaseLogger) { l.formatter = f }
}

// WithOutput appends a destination. Multiple outputs all receive every
// record that passes the level filter.
func WithOutput(o Output) LoggerOption {
	return func(l *BaseLogger) { l.outputs = append(l.outputs, o) }
}

func (l *BaseLogger) log(level Level, msg string, fields []Field) {
	l.slog.LogAttrs(context.Background(), toSlogLevel(level), msg, attrsFromFields(fields)...)
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *BaseLogger) With(fields ...Field) Logger {
	return &scopedLogger{base: l, prefix: fields, slog: l.slog.With(attrsToAny(attrsFromFields(fields))...)}
}

func (l *BaseLogger) SetLevel(level Level) { l.level.Set(toSlogLevel(level)) }
func (l *BaseLogger) GetLevel() Level      { return fromSlogLevel(l.level.Level()) }

// scopedLogger is returned by With; it carries its own slog.Logger (with
// attrs baked in) but defers level control to the base logger so
// SetLevel/GetLevel stay consistent across the whole tree.
type scopedLogger struct {
	base   *BaseLogger
	prefix []Field
	slog   *slog.Logger
}

func (s *scopedLogger) log(level Level, msg string, fields []Field) {
	s.slog.LogAttrs(context.Background(), toSlogLevel(level), msg, attrsFromFields(fields)...)
}

func (s *scopedLogger) Debug(msg string, fields ...Field) { s.log(DebugLevel, msg, fields) }
func (s *scopedLogger) Info(msg string, fields ...Field)  { s.log(InfoLevel, msg, fields) }
func (s *scopedLogger) Warn(msg string, fields ...Field)  { s.log(WarnLevel, msg, fields) }
func (s *scopedLogger) Error(msg string, fields ...Field) { s.log(ErrorLevel, msg, fields) }

func (s *scopedLogger) With(fields ...Field) Logger {
	all := append(append([]Field{}, s.prefix...), fields...)
	return &scopedLogger{base: s.base, prefix: all, slog: s.slog.With(attrsToAny(attrsFromFields(fields))...)}
}

func (s *scopedLogger) SetLevel(level Level) { s.base.SetLevel(level) }
func (s *scopedLogger) GetLevel() Level      { return s.base.GetLevel() }
