package resiliency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notiflow/eventchannel/internal/sink"
)

func TestBackoffDoubles(t *testing.T) {
	if got := Backoff(1); got != 2*time.Second {
		t.Fatalf("Backoff(1) = %v, want 2s", got)
	}
	if got := Backoff(2); got != 4*time.Second {
		t.Fatalf("Backoff(2) = %v, want 4s", got)
	}
}

func TestExecuteSucceedsWithoutRetry(t *testing.T) {
	p := NewExponentialBackoff(3)
	calls := 0
	_, err := p.Execute(context.Background(), func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		return sink.BatchResult{}, nil
	}, func(attempt int, delay time.Duration, cause error) {
		t.Fatalf("unexpected retry")
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteRetriesTransientThenSucceeds(t *testing.T) {
	p := NewExponentialBackoff(1)
	p.MaxAttempts = 1
	// shrink the backoff for the test with testFastPolicy (below), a copy
	// of Execute's retry/classify loop that waits 1ms instead of
	// Backoff(attempt).
	calls := 0
	var retries []int

	fastPolicy := &testFastPolicy{ExponentialBackoff: *p}
	_, err := fastPolicy.Execute(context.Background(), func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		if calls == 1 {
			return sink.BatchResult{}, &sink.Error{Kind: sink.KindInternal}
		}
		return sink.BatchResult{Successful: []sink.SuccessEntry{{ID: "0", MessageID: "m"}}}, nil
	}, func(attempt int, delay time.Duration, cause error) {
		retries = append(retries, attempt)
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if len(retries) != 1 || retries[0] != 1 {
		t.Fatalf("retries = %v, want [1]", retries)
	}
}

func TestExecuteDoesNotRetryPermanent(t *testing.T) {
	p := NewExponentialBackoff(3)
	calls := 0
	wantErr := &sink.Error{Kind: sink.KindPermanent, Message: "bad topic"}
	_, err := p.Execute(context.Background(), func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		return sink.BatchResult{}, wantErr
	}, func(attempt int, delay time.Duration, cause error) {
		t.Fatalf("unexpected retry for a permanent error")
	})
	if !errors.Is(err, wantErr) && err != wantErr {
		t.Fatalf("Execute() error = %v, want %v", err, wantErr)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteExhaustsBudget(t *testing.T) {
	p := &testFastPolicy{ExponentialBackoff: ExponentialBackoff{MaxAttempts: 1}}
	calls := 0
	retries := 0
	_, err := p.Execute(context.Background(), func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		return sink.BatchResult{}, &sink.Error{Kind: sink.KindThrottled}
	}, func(attempt int, delay time.Duration, cause error) {
		retries++
	})
	if err == nil {
		t.Fatalf("Execute() error = nil, want exhaustion error")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (initial + 1 retry)", calls)
	}
	if retries != 1 {
		t.Fatalf("retries = %d, want 1", retries)
	}
}

func TestExecuteZeroAttemptsMeansNoRetry(t *testing.T) {
	p := NewExponentialBackoff(0)
	calls := 0
	_, err := p.Execute(context.Background(), func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		return sink.BatchResult{}, &sink.Error{Kind: sink.KindInternal}
	}, func(attempt int, delay time.Duration, cause error) {
		t.Fatalf("MaxAttempts=0 must not retry")
	})
	if err == nil {
		t.Fatalf("Execute() error = nil, want the transient error surfaced")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestExecuteRespectsCancellation(t *testing.T) {
	p := &testFastPolicy{ExponentialBackoff: ExponentialBackoff{MaxAttempts: 3}}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := p.Execute(ctx, func(ctx context.Context) (sink.BatchResult, error) {
		calls++
		cancel()
		return sink.BatchResult{}, &sink.Error{Kind: sink.KindInternal}
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

// testFastPolicy replaces Execute with a line-for-line copy of
// ExponentialBackoff.Execute's loop that waits 1ms instead of
// Backoff(attempt), so the retry-path tests above don't wait real
// seconds; the retry/classify decisions in the copy match the original.
type testFastPolicy struct {
	ExponentialBackoff
}

func (p *testFastPolicy) Execute(ctx context.Context, fn func(ctx context.Context) (sink.BatchResult, error), onRetry func(attempt int, delay time.Duration, cause error)) (sink.BatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Millisecond
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
