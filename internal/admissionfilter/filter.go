package admissionfilter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// Filter is a compiled admission predicate. The zero value (Filter{})
// admits everything, matching the "no filter configured" default.
type Filter struct {
	prog    cel.Program
	enabled bool
}

// Compile parses and type-checks expr. An empty or all-whitespace expr
// yields the always-admit Filter. Exposed CEL variables:
//
//	json       - the event, decoded from JSON into CEL's dynamic type
//	type_name  - the registered event type's name
//	now_ms     - evaluation time, Unix milliseconds
func Compile(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("json", cel.DynType),
		cel.Variable("type_name", cel.StringType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return Filter{}, fmt.Errorf("admissionfilter: build env: %w", err)
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, fmt.Errorf("admissionfilter: parse: %w", iss.Err())
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return Filter{}, fmt.Errorf("admissionfilter: check: %w", iss2.Err())
	}
	prog, err := env.Program(checked)
	if err != nil {
		return Filter{}, fmt.Errorf("admissionfilter: compile: %w", err)
	}
	return Filter{prog: prog, enabled: true}, nil
}

// Admit evaluates the filter against event (JSON-marshaled internally).
// It returns true when the filter is disabled, when the expression
// evaluates truthy, and false otherwise — including when marshaling or
// evaluation fails, so a broken filter fails closed rather than letting
// everything through silently.
func (f Filter) Admit(typeName string, event any) bool {
	if !f.enabled {
		return true
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return false
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return false
	}
	out, _, err := f.prog.Eval(map[string]any{
		"json":      decoded,
		"type_name": typeName,
		"now_ms":    time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Enabled reports whether a non-trivial expression was compiled.
func (f Filter) Enabled() bool { return f.enabled }
