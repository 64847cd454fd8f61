package log

import (
	"context"
	"log/slog"
)

// bridgeHandler adapts a BaseLogger's formatter/output pipeline to the
// slog.Handler interface, so BaseLogger can drive a *slog.Logger while
// keeping its own field/formatter/output model as the single source of
// truth for how a line actually gets rendered.
type bridgeHandler struct {
	owner *BaseLogger
	attrs []slog.Attr
	group string
}

func newBridgeHandler(owner *BaseLogger) *bridgeHandler {
	return &bridgeHandler{owner: owner}
}

func (h *bridgeHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.owner.level.Level()
}

func (h *bridgeHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		fields[h.qualify(a.Key)] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		fields[h.qualify(a.Key)] = a.Value.Any()
		return true
	})
	rec := Record{
		Level:   fromSlogLevel(r.Level),
		Message: r.Message,
		Fields:  fields,
	}
	formatted, err := h.owner.formatter.Format(rec)
	if err != nil {
		return err
	}
	for _, out := range h.owner.outputs {
		if werr := out.Write(formatted); werr != nil {
			return werr
		}
	}
	return nil
}

func (h *bridgeHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func (h *bridgeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &bridgeHandler{owner: h.owner, group: h.group}
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return next
}

func (h *bridgeHandler) WithGroup(name string) slog.Handler {
	next := &bridgeHandler{owner: h.owner, attrs: append([]slog.Attr{}, h.attrs...)}
	if h.group == "" {
		next.group = name
	} else {
		next.group = h.group + "." + name
	}
	return next
}

func attrsFromFields(fields []Field) []slog.Attr {
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

func toSlogLevel(level Level) slog.Level {
	switch level {
	case DebugLevel:
		return slog.LevelDebug
	case InfoLevel:
		return slog.LevelInfo
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func fromSlogLevel(level slog.Level) Level {
	switch {
	case level < slog.LevelInfo:
		return DebugLevel
	case level < slog.LevelWarn:
		return InfoLevel
	case level < slog.LevelError:
		return WarnLevel
	default:
		return ErrorLevel
	}
}
