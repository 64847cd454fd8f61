package log

import (
	"io"
	"sync"
)

// ConsoleOutput writes formatted records to an io.Writer (typically
// os.Stdout/os.Stderr), serializing writes so interleaved goroutines don't
// tear lines.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput wraps w as an Output.
func NewConsoleOutput(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Write(formatted []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(formatted)
	return err
}

// NullOutput discards every record; useful in tests that only care about
// behavior, not log lines.
type NullOutput struct{}

func (NullOutput) Write([]byte) error { return nil }
