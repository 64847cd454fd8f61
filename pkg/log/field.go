package log

import "time"

// Field is a single piece of structured context attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// F builds a Field from an arbitrary value.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Str builds a string-valued Field.
func Str(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int-valued Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Int64 builds an int64-valued Field.
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

// Bool builds a bool-valued Field.
func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

// Duration builds a duration-valued Field.
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err builds a Field named "error" from an error. A nil error is rendered
// as the empty string rather than panicking callers that log speculatively.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Component tags a Field with the "component" key, the convention used to
// scope a logger to a single subsystem via Logger.With.
func Component(name string) Field { return Field{Key: "component", Value: name} }
