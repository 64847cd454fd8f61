package log

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// JSONFormatter renders a Record as a single-line JSON object.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(rec Record) ([]byte, error) {
	out := make(map[string]any, len(rec.Fields)+3)
	for k, v := range rec.Fields {
		out[k] = v
	}
	out["level"] = rec.Level.String()
	out["msg"] = rec.Message
	out["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// TextFormatter renders a Record as "TIMESTAMP LEVEL msg key=value
// key=value...", with a UTC millisecond timestamp and keys sorted.
type TextFormatter struct{}

func (f *TextFormatter) Format(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %-5s %s", time.Now().UTC().Format("2006-01-02T15:04:05.000Z"), rec.Level.String(), rec.Message)
	keys := make([]string, 0, len(rec.Fields))
	for k := range rec.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&buf, " %s=%v", k, rec.Fields[k])
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
