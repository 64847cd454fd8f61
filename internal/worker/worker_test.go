package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/notiflow/eventchannel/internal/eventqueue"
	"github.com/notiflow/eventchannel/internal/resiliency"
	"github.com/notiflow/eventchannel/internal/sink"
	"github.com/notiflow/eventchannel/pkg/log"
)

type orderCreated struct {
	OrderID    string
	Amount     float64
	CustomerID string
}

func newTestWorker(t *testing.T, q *eventqueue.Queue[orderCreated], sinkClient sink.Client) *Worker[orderCreated] {
	t.Helper()
	w, err := New(q.Reader(), Config{
		EventType:  "orderCreated",
		TopicID:    "arn:aws:sns:us-east-1:000000000000:order-events-topic",
		SinkClient: sinkClient,
		Policy:     resiliency.NewExponentialBackoff(0),
		Logger:     log.NewLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w
}

func runUntilClosed(t *testing.T, w *Worker[orderCreated]) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	return done
}

func TestWorkerSingleEventHappyPath(t *testing.T) {
	q := eventqueue.New[orderCreated](eventqueue.Options{Capacity: 8})
	s := sink.NewMemory()
	w := newTestWorker(t, q, s)
	done := runUntilClosed(t, w)

	if _, err := q.Write(context.Background(), orderCreated{OrderID: "ORD-12345", Amount: 199.99, CustomerID: "CUST-456"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	waitForCalls(t, s, 1)
	q.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if calls[0].Topic != "arn:aws:sns:us-east-1:000000000000:order-events-topic" {
		t.Fatalf("topic = %q", calls[0].Topic)
	}
	if len(calls[0].Entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(calls[0].Entries))
	}
	var got orderCreated
	if err := json.Unmarshal([]byte(calls[0].Entries[0].Message), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := orderCreated{OrderID: "ORD-12345", Amount: 199.99, CustomerID: "CUST-456"}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestWorkerBatchOfThree(t *testing.T) {
	q := eventqueue.New[orderCreated](eventqueue.Options{Capacity: 8})
	s := sink.NewMemory()
	w := newTestWorker(t, q, s)

	for i := 0; i < 3; i++ {
		if _, err := q.Write(context.Background(), orderCreated{OrderID: itoa(i)}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	done := runUntilClosed(t, w)

	waitForCalls(t, s, 1)
	q.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("len(calls) = %d, want 1", len(calls))
	}
	if len(calls[0].Entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(calls[0].Entries))
	}
	for i, e := range calls[0].Entries {
		if e.ID != itoa(i) {
			t.Fatalf("entries[%d].ID = %q, want %q", i, e.ID, itoa(i))
		}
	}
}

func TestWorkerPartialFailureNotReenqueued(t *testing.T) {
	q := eventqueue.New[orderCreated](eventqueue.Options{Capacity: 8})
	s := sink.NewMemory()
	s.EnqueueResult(sink.BatchResult{
		Successful: []sink.SuccessEntry{{ID: "0", MessageID: "m-0"}},
		Failed:     []sink.FailedEntry{{ID: "1", Code: "InvalidParameter", Message: "Invalid parameter"}},
	})
	w := newTestWorker(t, q, s)

	for i := 0; i < 2; i++ {
		if _, err := q.Write(context.Background(), orderCreated{OrderID: itoa(i)}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	done := runUntilClosed(t, w)

	waitForCalls(t, s, 1)
	q.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(s.Calls()) != 1 {
		t.Fatalf("expected no retry/re-enqueue call, got %d calls", len(s.Calls()))
	}
}

func TestWorkerTransientRetryThenSucceeds(t *testing.T) {
	q := eventqueue.New[orderCreated](eventqueue.Options{Capacity: 8})
	s := sink.NewMemory()
	s.EnqueueError(&sink.Error{Kind: sink.KindInternal, Message: "internal error"})
	w, err := New(q.Reader(), Config{
		EventType:  "orderCreated",
		TopicID:    "arn:aws:sns:us-east-1:000000000000:order-events-topic",
		SinkClient: s,
		Policy:     fastPolicy{resiliency.NewExponentialBackoff(1)},
		Logger:     log.NewLogger(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	done := runUntilClosed(t, w)

	if _, err := q.Write(context.Background(), orderCreated{OrderID: "ORD-1"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	waitForCalls(t, s, 2)
	q.Close()
	if err := <-done; err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(s.Calls()) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(s.Calls()))
	}
}

func TestWorkerShutdownUnderLoadRespectsDeadline(t *testing.T) {
	q := eventqueue.New[orderCreated](eventqueue.Options{Capacity: 1})
	s := sink.NewMemory()
	w := newTestWorker(t, q, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Fill the single slot, then block a second producer on a full queue.
	if _, err := q.Write(context.Background(), orderCreated{OrderID: "ORD-1"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	producerDone := make(chan error, 1)
	go func() {
		_, werr := q.Write(ctx, orderCreated{OrderID: "ORD-2"})
		producerDone <- werr
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not stop within the shutdown deadline")
	}

	select {
	case err := <-producerDone:
		if err == nil {
			t.Fatalf("blocked Write() succeeded after cancellation, want an error")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("blocked producer did not observe cancellation")
	}
}

type fastPolicy struct {
	*resiliency.ExponentialBackoff
}

func (p fastPolicy) Execute(ctx context.Context, fn func(ctx context.Context) (sink.BatchResult, error), onRetry func(attempt int, delay time.Duration, cause error)) (sink.BatchResult, error) {
	wrapped := func(attempt int, delay time.Duration, cause error) {
		if onRetry != nil {
			onRetry(attempt, time.Millisecond, cause)
		}
	}
	return fastExecute(ctx, p.ExponentialBackoff.MaxAttempts, fn, wrapped)
}

func fastExecute(ctx context.Context, maxAttempts int, fn func(ctx context.Context) (sink.BatchResult, error), onRetry func(attempt int, delay time.Duration, cause error)) (sink.BatchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= maxAttempts; attempt++ {
		if attempt > 0 {
			if onRetry != nil {
				onRetry(attempt, time.Millisecond, lastErr)
			}
			select {
			case <-time.After(time.Millisecond):
			case <-ctx.Done():
				return sink.BatchResult{}, ctx.Err()
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

func waitForCalls(t *testing.T, s *sink.Memory, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Calls()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sink calls, got %d", n, len(s.Calls()))
}

func itoa(i int) string {
	return string(rune('0' + i))
}
