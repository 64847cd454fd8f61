package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/notiflow/eventchannel/pkg/log"
)

// ShutdownDeadline bounds how long Stop waits for any one worker to
// finish before giving up on it and moving on.
const ShutdownDeadline = 5 * time.Second

// Runnable is a long-lived worker loop. Worker[T].Run satisfies this for
// any T without the Dispatcher itself needing to be generic.
type Runnable interface {
	Run(ctx context.Context) error
}

// ErrAlreadyStarted is returned by Register once Start has run, and by
// Start if called more than once.
var ErrAlreadyStarted = errors.New("dispatch: already started")

type handle struct {
	name   string
	run    Runnable
	cancel context.CancelFunc
	done   chan error
}

// Dispatcher is the Host: it owns the full set of registered workers and
// starts/stops them together. The zero value is not usable; construct
// with New.
type Dispatcher struct {
	mu      sync.Mutex
	handles []*handle
	started bool
	log     log.Logger
}

// New returns an empty Dispatcher. logger must not be nil.
func New(logger log.Logger) (*Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("dispatch: %w", errors.New("nil logger"))
	}
	return &Dispatcher{log: logger.With(log.Component("dispatch"))}, nil
}

// Register adds a named worker to the directory. It must be called
// before Start; the type name is used only for logging.
func (d *Dispatcher) Register(typeName string, w Runnable) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return ErrAlreadyStarted
	}
	d.handles = append(d.handles, &handle{name: typeName, run: w})
	return nil
}

// Start derives a cancellation signal linked to ctx for every registered
// worker and launches its Run loop in its own goroutine — concurrently
// across types, so one worker's slow start cannot delay another's. Start
// returns immediately without waiting for any worker loop to finish.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return ErrAlreadyStarted
	}
	d.started = true

	for _, h := range d.handles {
		h := h
		childCtx, cancel := context.WithCancel(ctx)
		h.cancel = cancel
		h.done = make(chan error, 1)
		d.log.Info("starting worker", log.Str("type", h.name))
		go func() {
			h.done <- h.run.Run(childCtx)
		}()
	}
	return nil
}

// Stop fires cancellation for every registered worker, then waits — for
// each, concurrently — for its Run loop to return, for ShutdownDeadline
// to elapse, or for ctx to finish, whichever comes first. A worker
// returning context.Canceled/context.DeadlineExceeded is the expected
// shutdown outcome and is logged at info level, not as an error; any
// other error is logged at error level. Stop does not propagate
// individual worker errors to its own return value — shutdown always
// completes within the bound even if a worker misbehaves.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	handles := append([]*handle(nil), d.handles...)
	d.mu.Unlock()

	for _, h := range handles {
		if h.cancel != nil {
			h.cancel()
		}
	}

	eg, egCtx := errgroup.WithContext(context.Background())
	for _, h := range handles {
		h := h
		eg.Go(func() error {
			select {
			case err := <-h.done:
				logStopOutcome(d.log, h.name, err)
			case <-time.After(ShutdownDeadline):
				d.log.Warn("worker did not stop within the shutdown deadline", log.Str("type", h.name))
			case <-ctx.Done():
				d.log.Warn("stop aborted by caller context", log.Str("type", h.name), log.Err(ctx.Err()))
			case <-egCtx.Done():
			}
			return nil
		})
	}
	return eg.Wait()
}

func logStopOutcome(logger log.Logger, typeName string, err error) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Info("worker stopped", log.Str("type", typeName))
		return
	}
	logger.Error("worker exited with an error", log.Str("type", typeName), log.Err(err))
}
