package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/notiflow/eventchannel/internal/eventqueue"
	"github.com/notiflow/eventchannel/internal/metrics"
	"github.com/notiflow/eventchannel/internal/resiliency"
	"github.com/notiflow/eventchannel/internal/sink"
	"github.com/notiflow/eventchannel/pkg/log"
)

// ErrNullArgument is returned by New when a required Config field is
// missing.
var ErrNullArgument = errors.New("worker: required argument is nil")

// ErrSerialization wraps a JSON marshal failure for one event in a
// batch; it fails the whole batch.
var ErrSerialization = errors.New("worker: failed to serialize event")

// Config configures a Worker[T] at construction.
type Config struct {
	// EventType labels logs and metrics; typically the registered type's
	// name.
	EventType string
	// TopicID is the remote topic the worker publishes to. Required.
	TopicID string
	// SinkClient publishes batches. Required.
	SinkClient sink.Client
	// Policy wraps each publish attempt with retry/backoff. Required —
	// callers that want the default retry behavior build one with
	// resiliency.NewExponentialBackoff(3) before constructing the Worker.
	Policy resiliency.Policy
	// Metrics receives publish/retry observations. Defaults to a no-op.
	Metrics metrics.Recorder
	// Logger is required.
	Logger log.Logger
}

// Worker drains a Queue[T]'s Reader, coalesces into batches of up to
// sink.MaxBatchEntries, and publishes each batch through SinkClient
// under Policy. A Worker is driven by exactly one call to Run; it is not
// safe to call Run concurrently on the same Worker.
type Worker[T any] struct {
	reader     *eventqueue.Reader[T]
	topic      string
	eventType  string
	sinkClient sink.Client
	policy     resiliency.Policy
	metrics    metrics.Recorder
	log        log.Logger
	corr       *correlationCounter
}

// correlationCounter tags each flushed batch with an id unique within
// this process: the worker's start time plus a monotonically increasing
// count, so log lines for the same batch can be grepped together
// without pulling in a general-purpose id scheme this worker doesn't
// need.
type correlationCounter struct {
	startedAt int64
	n         atomic.Uint64
}

func newCorrelationCounter() *correlationCounter {
	return &correlationCounter{startedAt: time.Now().UnixNano()}
}

func (c *correlationCounter) next() string {
	return fmt.Sprintf("%x-%x", c.startedAt, c.n.Add(1))
}

// New constructs a Worker[T] reading from reader.
func New[T any](reader *eventqueue.Reader[T], cfg Config) (*Worker[T], error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: reader", ErrNullArgument)
	}
	if cfg.TopicID == "" {
		return nil, fmt.Errorf("%w: topic id", ErrNullArgument)
	}
	if cfg.SinkClient == nil {
		return nil, fmt.Errorf("%w: sink client", ErrNullArgument)
	}
	if cfg.Policy == nil {
		return nil, fmt.Errorf("%w: resiliency policy", ErrNullArgument)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger", ErrNullArgument)
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	return &Worker[T]{
		reader:     reader,
		topic:      cfg.TopicID,
		eventType:  cfg.EventType,
		sinkClient: cfg.SinkClient,
		policy:     cfg.Policy,
		metrics:    m,
		log:        cfg.Logger.With(log.Component("worker"), log.Str("event_type", cfg.EventType)),
		corr:       newCorrelationCounter(),
	}, nil
}

// Run is the drain loop: wait for readability, drain into a batch buffer
// of up to 10, flushing early whenever the queue briefly empties so a
// lone event is published without delay. Run returns nil when the queue
// is closed and fully drained, and ctx.Err() when ctx is cancelled — any
// events still buffered at that instant are discarded, per the shutdown
// contract.
func (w *Worker[T]) Run(ctx context.Context) error {
	buf := make([]T, 0, sink.MaxBatchEntries)
	for {
		readable, err := w.reader.WaitToRead(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.log.Info("drain loop stopping", log.Err(err))
			} else {
				w.log.Error("wait to read failed", log.Err(err))
			}
			return err
		}
		if !readable {
			return nil
		}

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item, ok := w.reader.TryRead()
			if !ok {
				break
			}
			buf = append(buf, item)

			if len(buf) == sink.MaxBatchEntries || !w.reader.TryPeek() {
				if err := w.flush(ctx, buf); err != nil {
					return err
				}
				buf = buf[:0]
			}
		}
	}
}

// flush publishes batch. It returns non-nil only when ctx was cancelled
// mid-publish, signalling Run to exit the drain loop; every other
// failure (serialization, permanent sink error, exhausted retries) is
// logged here and absorbed so the drain loop continues.
func (w *Worker[T]) flush(ctx context.Context, batch []T) error {
	if len(batch) == 0 {
		return nil
	}

	logger := w.log.With(log.Str("correlation_id", w.corr.next()), log.Int("batch_size", len(batch)))

	entries := make([]sink.Entry, len(batch))
	for i, item := range batch {
		raw, err := json.Marshal(item)
		if err != nil {
			logger.Error("failed to serialize batch", log.Err(fmt.Errorf("%w: %v", ErrSerialization, err)))
			return nil
		}
		entries[i] = sink.Entry{ID: strconv.Itoa(i), Message: string(raw)}
	}

	result, err := w.policy.Execute(ctx, func(ctx context.Context) (sink.BatchResult, error) {
		return w.sinkClient.PublishBatch(ctx, w.topic, entries)
	}, func(attempt int, delay time.Duration, cause error) {
		w.metrics.IncRetryAttempt(w.eventType)
		logger.Warn("retrying publish",
			log.Int("attempt", attempt),
			log.Duration("delay", delay),
			log.Err(cause))
	})

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Info("publish aborted by cancellation", log.Err(err))
			return err
		}
		logger.Error("failed to publish batch", log.Err(err))
		return nil
	}

	if n := len(result.Successful); n > 0 {
		w.metrics.IncPublished(w.eventType, metrics.OutcomeSuccess, n)
		logger.Debug("published batch entries", log.Int("count", n))
	}
	for _, f := range result.Failed {
		w.metrics.IncPublished(w.eventType, metrics.OutcomeFailure, 1)
		logger.Error("failed to publish batch entry",
			log.Str("id", f.ID), log.Str("code", f.Code), log.Str("message", f.Message))
	}
	return nil
}
