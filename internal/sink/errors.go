package sink

import (
	"errors"
	"fmt"
)

// Kind classifies a whole-batch publish failure for the resiliency
// policy. Only Throttled, Internal, and a Transport error whose status
// is 500 or 503 are transient; everything else is permanent.
type Kind int

const (
	KindPermanent Kind = iota
	KindThrottled
	KindInternal
	KindTransport
)

// Error is the error a Client returns when an entire PublishBatch call
// fails (as opposed to individual entries failing, which is reported via
// BatchResult.Failed).
type Error struct {
	Kind       Kind
	StatusCode int // meaningful only for KindTransport
	Code       string
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sink: %s (code=%s status=%d): %s", e.kindName(), e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("sink: %s (code=%s): %s", e.kindName(), e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) kindName() string {
	switch e.Kind {
	case KindThrottled:
		return "throttled"
	case KindInternal:
		return "internal error"
	case KindTransport:
		return "transport error"
	default:
		return "permanent error"
	}
}

// Transient reports whether err (or anything it wraps) is a transient
// sink failure worth retrying: Throttled, InternalError, or a transport
// error whose HTTP-like status is 500 or 503.
func Transient(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Kind {
	case KindThrottled, KindInternal:
		return true
	case KindTransport:
		return se.StatusCode == 500 || se.StatusCode == 503
	default:
		return false
	}
}
