package log

import (
	"strings"
	"sync"
	"testing"
)

type captureOutput struct {
	mu   sync.Mutex
	line string
}

func (c *captureOutput) Write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line = string(b)
	return nil
}

func (c *captureOutput) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.line
}

func TestLoggerRespectsLevel(t *testing.T) {
	cap := &captureOutput{}
	l := NewLogger(WithLevel(WarnLevel), WithFormatter(&TextFormatter{}), WithOutput(cap))

	l.Info("should not appear")
	if cap.last() != "" {
		t.Fatalf("expected info to be filtered, got %q", cap.last())
	}

	l.Warn("should appear")
	if !strings.Contains(cap.last(), "should appear") {
		t.Fatalf("expected warn line, got %q", cap.last())
	}
}

func TestWithAddsFields(t *testing.T) {
	cap := &captureOutput{}
	l := NewLogger(WithLevel(DebugLevel), WithFormatter(&TextFormatter{}), WithOutput(cap))
	scoped := l.With(Component("worker"), Str("event_type", "OrderCreated"))

	scoped.Info("batch published")

	line := cap.last()
	if !strings.Contains(line, "component=worker") || !strings.Contains(line, "event_type=OrderCreated") {
		t.Fatalf("expected scoped fields in line, got %q", line)
	}
}

func TestJSONFormatterProducesValidLine(t *testing.T) {
	cap := &captureOutput{}
	l := NewLogger(WithLevel(DebugLevel), WithFormatter(&JSONFormatter{}), WithOutput(cap))
	l.Error("boom", Err(errBoom))

	line := cap.last()
	if !strings.Contains(line, `"msg":"boom"`) {
		t.Fatalf("expected msg field, got %q", line)
	}
	if !strings.Contains(line, `"error":"boom happened"`) {
		t.Fatalf("expected error field, got %q", line)
	}
}

type errString string

func (e errString) Error() string { return string(e) }

var errBoom = errString("boom happened")

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"":      InfoLevel,
		"WARN":  WarnLevel,
		"error": ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("nonsense"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
