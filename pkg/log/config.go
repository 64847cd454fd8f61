package log

import (
	"fmt"
	"os"
)

// Config is the declarative shape used to build a process-wide Logger from
// configuration (flags, env, file) rather than from a chain of options.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// ApplyConfig builds a Logger from a Config. Format selects the
// Formatter: "json" or "text" (default).
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log: invalid level %q: %w", cfg.Level, err)
	}
	var formatter Formatter
	switch cfg.Format {
	case "json":
		formatter = &JSONFormatter{}
	case "", "text":
		formatter = &TextFormatter{}
	default:
		return nil, fmt.Errorf("log: unknown format %q", cfg.Format)
	}
	return NewLogger(
		WithLevel(level),
		WithFormatter(formatter),
		WithOutput(NewConsoleOutput(os.Stderr)),
	), nil
}
