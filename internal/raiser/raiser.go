package raiser

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/notiflow/eventchannel/internal/admissionfilter"
	"github.com/notiflow/eventchannel/internal/eventqueue"
	"github.com/notiflow/eventchannel/pkg/log"
)

// ErrNullArgument is returned by RaiseEvent/RaiseEvents when the event
// argument is absent (a nil pointer, interface, map, slice, chan, or
// func). Fatal to the caller, unlike a missing channel registration.
var ErrNullArgument = errors.New("raiser: event argument is nil")

// entry is the type-erased directory record for one registered channel.
// queue keeps its concrete *eventqueue.Queue[T] type via the any it was
// stored as; typ records the runtime type T was registered under so a
// mismatched retrieval (defensive; should not occur given the generic
// RegisterChannel/RaiseEvent API) can be logged rather than panicking.
type entry struct {
	typ    reflect.Type
	queue  any
	filter admissionfilter.Filter
}

// Raiser is the type-keyed directory from event type to queue. The zero
// value is not usable; construct with New.
type Raiser struct {
	mu      sync.RWMutex
	entries map[reflect.Type]entry
	log     log.Logger
}

// New returns an empty Raiser. logger must not be nil.
func New(logger log.Logger) (*Raiser, error) {
	if logger == nil {
		return nil, fmt.Errorf("raiser: %w: logger", ErrNullArgument)
	}
	return &Raiser{
		entries: make(map[reflect.Type]entry),
		log:     logger.With(log.Component("raiser")),
	}, nil
}

// RegisterChannel installs queue under the key T, with an optional
// admission filter consulted by RaiseEvent/RaiseEvents before every
// write. A zero admissionfilter.Filter admits everything. Registering
// the same type twice is permitted; the later registration wins.
func RegisterChannel[T any](r *Raiser, queue *eventqueue.Queue[T], filter admissionfilter.Filter) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.Lock()
	_, replaced := r.entries[typ]
	r.entries[typ] = entry{typ: typ, queue: queue, filter: filter}
	r.mu.Unlock()

	if replaced {
		r.log.Info("replaced channel registration", log.Str("type", typ.String()))
	} else {
		r.log.Info("registered channel", log.Str("type", typ.String()))
	}
}

// RaiseEvent routes event to the queue registered for T. It returns
// (false, ErrNullArgument) if event is absent. If no queue is registered
// for T, or the admission filter rejects the event, it logs and returns
// (false, nil) — a producer-visible "don't worry about it" outcome.
// Otherwise it returns the result of queue.Write.
func RaiseEvent[T any](ctx context.Context, r *Raiser, event T) (bool, error) {
	if isNil(event) {
		return false, ErrNullArgument
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.RLock()
	e, ok := r.entries[typ]
	r.mu.RUnlock()
	if !ok {
		r.log.Warn("no channel registered for type", log.Str("type", typ.String()))
		return false, nil
	}

	queue, ok := e.queue.(*eventqueue.Queue[T])
	if !ok {
		r.log.Error("registered queue type mismatch", log.Str("type", typ.String()))
		return false, nil
	}

	if !e.filter.Admit(typ.String(), event) {
		r.log.Debug("event rejected by admission filter", log.Str("type", typ.String()))
		return false, nil
	}

	return queue.Write(ctx, event)
}

// RaiseEvents routes every element of events to the queue registered for
// T via WriteAll, applying the same per-event admission filter as
// RaiseEvent to each element before handing the surviving subsequence to
// WriteAll. Per-item write failures inside WriteAll are not all-or-
// nothing; callers needing that must implement it above the raiser.
func RaiseEvents[T any](ctx context.Context, r *Raiser, events []T) (int, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	r.mu.RLock()
	e, ok := r.entries[typ]
	r.mu.RUnlock()
	if !ok {
		r.log.Warn("no channel registered for type", log.Str("type", typ.String()))
		return 0, nil
	}

	queue, ok := e.queue.(*eventqueue.Queue[T])
	if !ok {
		r.log.Error("registered queue type mismatch", log.Str("type", typ.String()))
		return 0, nil
	}

	admitted := make([]T, 0, len(events))
	for _, ev := range events {
		if isNil(ev) {
			return 0, ErrNullArgument
		}
		if e.filter.Admit(typ.String(), ev) {
			admitted = append(admitted, ev)
		} else {
			r.log.Debug("event rejected by admission filter", log.Str("type", typ.String()))
		}
	}

	return queue.WriteAll(ctx, admitted)
}

// isNil reports whether event is a nil pointer, interface, map, slice,
// chan, or func. Value types (structs, ints, strings, ...) are never
// "absent" and always report false.
func isNil(event any) bool {
	if event == nil {
		return true
	}
	v := reflect.ValueOf(event)
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
