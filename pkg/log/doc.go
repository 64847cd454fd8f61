// Package log provides the structured logging facade used throughout
// eventchannel.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Internally it is backed by the
// standard library's log/slog via a thin handler that keeps a consistent
// formatter/output pipeline across the module, so callers can adopt the
// slog ecosystem (and anything that accepts a slog.Handler) without giving
// up the field-based API the rest of this codebase uses.
//
// # Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput(os.Stderr)),
//	)
//	l = l.With(log.Component("worker"), log.Str("event_type", "OrderCreated"))
//	l.Info("batch published", log.Int("entries", 7))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config, selecting
// JSON or text formatting. RedirectStdLog routes the standard library's
// log package (used by some third-party clients) through the same Logger.
package log
