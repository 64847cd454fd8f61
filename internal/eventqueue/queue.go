package eventqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/notiflow/eventchannel/internal/metrics"
)

// ErrClosed is returned by Write/WriteAll once the queue has been closed
// for writes.
var ErrClosed = errors.New("eventqueue: closed for writes")

// compactThreshold bounds how far the backing slice's capacity is allowed
// to drift from its live length before TryRead reallocates. Without this,
// a long-lived queue that's mostly empty but occasionally bursts would
// keep the high-water-mark array alive forever.
const compactThreshold = 64

// Options configures a Queue[T] at construction.
type Options struct {
	// Capacity bounds the number of buffered items. Zero or negative
	// means unbounded (Write never blocks on space).
	Capacity int
	// EventType labels metrics emitted by this queue; typically the
	// registered type's name.
	EventType string
	// Metrics receives depth/blocked observations. Defaults to a no-op.
	Metrics metrics.Recorder
}

// Queue is a bounded FIFO of events of type T. The zero value is not
// usable; construct with New.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	capacity int
	closed   bool

	// readReady and writeReady are broadcast by closing the current
	// channel and replacing it with a fresh one under mu — the same
	// wake-everyone-waiting trick as a sync.Cond, but select-compatible
	// so it composes with context cancellation.
	readReady  chan struct{}
	writeReady chan struct{}

	blocked   int
	eventType string
	metrics   metrics.Recorder
}

// New constructs a Queue[T] per opts.
func New[T any](opts Options) *Queue[T] {
	m := opts.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	return &Queue[T]{
		capacity:   opts.Capacity,
		eventType:  opts.EventType,
		metrics:    m,
		readReady:  make(chan struct{}),
		writeReady: make(chan struct{}),
	}
}

func (q *Queue[T]) bounded() bool { return q.capacity > 0 }

// Write admits item, blocking while the queue is full. It returns true
// once the item is admitted. It returns false with ErrClosed if the
// queue has been closed for writes, or false with ctx.Err() if ctx is
// done before admission.
func (q *Queue[T]) Write(ctx context.Context, item T) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return false, ErrClosed
		}
		if !q.bounded() || len(q.items) < q.capacity {
			q.items = append(q.items, item)
			q.broadcastLocked(&q.readReady)
			depth := len(q.items)
			q.mu.Unlock()
			q.metrics.SetQueueDepth(q.eventType, depth)
			return true, nil
		}
		wait := q.writeReady
		q.blocked++
		blocked := q.blocked
		q.mu.Unlock()
		q.metrics.SetQueueBlocked(q.eventType, blocked)

		select {
		case <-wait:
			q.mu.Lock()
			q.blocked--
			blocked = q.blocked
			q.mu.Unlock()
			q.metrics.SetQueueBlocked(q.eventType, blocked)
			continue
		case <-ctx.Done():
			q.mu.Lock()
			q.blocked--
			blocked = q.blocked
			q.mu.Unlock()
			q.metrics.SetQueueBlocked(q.eventType, blocked)
			return false, ctx.Err()
		}
	}
}

// WriteAll writes each item in order, stopping at the first failure. It
// returns the number of items admitted before the queue was closed or
// ctx fired. Per-item failures are not all-or-nothing; callers that need
// that must implement it above the queue.
func (q *Queue[T]) WriteAll(ctx context.Context, items []T) (int, error) {
	for i, item := range items {
		ok, err := q.Write(ctx, item)
		if !ok {
			return i, err
		}
	}
	return len(items), nil
}

// Close marks the queue closed for writes. Idempotent. Readers drain
// whatever remains and then observe end-of-stream.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.broadcastLocked(&q.readReady)
	q.broadcastLocked(&q.writeReady)
	q.mu.Unlock()
}

// broadcastLocked wakes every goroutine waiting on *ch. Caller holds q.mu.
func (q *Queue[T]) broadcastLocked(ch *chan struct{}) {
	close(*ch)
	*ch = make(chan struct{})
}

// Reader returns the single-consumer read handle for this queue.
func (q *Queue[T]) Reader() *Reader[T] { return &Reader[T]{q: q} }

// Reader is the exclusive, single-consumer read side of a Queue[T].
type Reader[T any] struct {
	q *Queue[T]
}

// WaitToRead blocks until at least one item is available, the queue is
// closed and drained (returns false, nil: end-of-stream), or ctx is done
// (returns false, ctx.Err()).
func (r *Reader[T]) WaitToRead(ctx context.Context) (bool, error) {
	q := r.q
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			q.mu.Unlock()
			return true, nil
		}
		if q.closed {
			q.mu.Unlock()
			return false, nil
		}
		wait := q.readReady
		q.mu.Unlock()

		select {
		case <-wait:
			continue
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// TryRead pops the head item without blocking. It returns ok=false if the
// queue is currently empty.
func (r *Reader[T]) TryRead() (item T, ok bool) {
	q := r.q
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return item, false
	}
	item = q.items[0]
	q.items = q.items[1:]
	if cap(q.items) > compactThreshold && cap(q.items) > 2*len(q.items) {
		q.items = append([]T(nil), q.items...)
	}
	q.broadcastLocked(&q.writeReady)
	depth := len(q.items)
	q.mu.Unlock()
	q.metrics.SetQueueDepth(q.eventType, depth)
	return item, true
}

// TryPeek reports whether a subsequent TryRead would immediately succeed,
// without consuming anything. It must return false promptly when nothing
// is queued, even if a write is imminent — that promptness is what lets
// the worker flush a lone event instead of waiting for nine more.
func (r *Reader[T]) TryPeek() bool {
	q := r.q
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) > 0
}

// Depth returns the number of items currently buffered. Intended for
// diagnostics/tests, not control flow.
func (q *Queue[T]) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
