package log

import (
	"log"
)

// stdWriter adapts a Logger into an io.Writer suitable for log.SetOutput,
// so third-party clients that only know about the standard library's log
// package (AWS SDK retries, for instance) end up going through the same
// formatter/output pipeline as everything else.
type stdWriter struct {
	logger Logger
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Info(msg, Component("stdlog"))
	return len(p), nil
}

// RedirectStdLog routes the standard library's default logger through the
// given Logger at InfoLevel.
func RedirectStdLog(logger Logger) {
	log.SetFlags(0)
	log.SetOutput(stdWriter{logger: logger})
}
