package resiliency

import (
	"context"
	"time"

	"github.com/notiflow/eventchannel/internal/sink"
)

// Policy wraps a single publish attempt with a retry schedule. Execute
// calls fn once; if it fails with a transient sink error it calls fn
// again, waiting Backoff(attempt) between tries, until MaxAttempts is
// exhausted or fn succeeds or ctx is done. onRetry, if non-nil, is
// invoked once per retry before the backoff sleep so the caller can log
// it — Execute itself never logs.
type Policy interface {
	Execute(ctx context.Context, fn func(ctx context.Context) (sink.BatchResult, error), onRetry func(attempt int, delay time.Duration, cause error)) (sink.BatchResult, error)
}

// ExponentialBackoff is the default Policy: attempt k in 1..MaxAttempts
// waits 2^k seconds before the k-th retry. Only errors sink.Transient
// classifies as transient are retried; anything else, including
// ctx.Err(), surfaces immediately.
type ExponentialBackoff struct {
	// MaxAttempts is the retry budget; callers wiring this from a
	// Config typically name the source field MaxRetryAttempts. Zero
	// means the first transient failure is treated as permanent — no
	// retries are attempted.
	MaxAttempts int
}

// NewExponentialBackoff returns the default Policy with the given retry
// budget.
func NewExponentialBackoff(maxAttempts int) *ExponentialBackoff {
	return &ExponentialBackoff{MaxAttempts: maxAttempts}
}

// Backoff returns the delay before the k-th retry, k in 1..MaxAttempts.
func Backoff(k int) time.Duration {
	return (1 << uint(k)) * time.Second
}

func (p *ExponentialBackoff) Execute(ctx context.Context, fn func(ctx context.Context) (sink.BatchResult, error), onRetry func(attempt int, delay time.Duration, cause error)) (sink.BatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt)
			if onRetry != nil {
				onRetry(attempt, delay, lastErr)
			}
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return sink.BatchResult{}, ctx.Err()
			case <-timer.C:
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return sink.BatchResult{}, ctx.Err()
		}
		if !sink.Transient(err) {
			return sink.BatchResult{}, err
		}
		lastErr = err
	}
	return sink.BatchResult{}, lastErr
}
