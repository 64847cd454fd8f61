// Package admissionfilter compiles and evaluates the optional per-type
// CEL predicate a Raiser consults before admitting an event to its
// queue. It adapts a CEL-filtered subscription-delivery pattern,
// repointed from post-hoc read filtering to pre-admission filtering: the
// expression is evaluated against the JSON encoding of the event, not
// against a raw stream record, so the filter language stays decoupled
// from the registered Go type.
//
// An event for which the filter evaluates to false (or fails to
// evaluate at all — evaluation errors are treated as "filtered out",
// fail-closed) never reaches Queue.Write, so it cannot violate any
// admission or backpressure invariant: those only describe events for
// which Write returned true.
package admissionfilter
