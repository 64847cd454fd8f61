package sink

import (
	"context"
	"sync"
)

// CallRecord captures one PublishBatch invocation against a Memory sink,
// for assertions in tests.
type CallRecord struct {
	Topic   string
	Entries []Entry
}

// Memory is an in-memory Client for tests and for the CLI's dry-run
// mode. By default every entry succeeds with a synthetic message id.
// Tests script failures via EnqueueResult/EnqueueError (queued, consumed in call
// order) to reproduce partial-batch failures, whole-call throttling, and
// retry-then-succeed scenarios end to end.
type Memory struct {
	mu      sync.Mutex
	calls   []CallRecord
	results []BatchResult // queued per-call results; falls back to all-success
	errs    []error       // queued whole-call errors, consulted before results
}

// NewMemory returns an empty Memory sink that succeeds by default.
func NewMemory() *Memory { return &Memory{} }

// EnqueueResult schedules r as the outcome of the next PublishBatch call
// that isn't satisfied by a queued error.
func (m *Memory) EnqueueResult(r BatchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// EnqueueError schedules err as the outcome of the next PublishBatch
// call.
func (m *Memory) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

// Calls returns every PublishBatch invocation observed so far, in order.
func (m *Memory) Calls() []CallRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CallRecord(nil), m.calls...)
}

func (m *Memory) PublishBatch(ctx context.Context, topic string, entries []Entry) (BatchResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, CallRecord{Topic: topic, Entries: append([]Entry(nil), entries...)})

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		m.mu.Unlock()
		return BatchResult{}, err
	}
	if len(m.results) > 0 {
		r := m.results[0]
		m.results = m.results[1:]
		m.mu.Unlock()
		return r, nil
	}
	m.mu.Unlock()

	result := BatchResult{Successful: make([]SuccessEntry, 0, len(entries))}
	for i, e := range entries {
		result.Successful = append(result.Successful, SuccessEntry{ID: e.ID, MessageID: syntheticMessageID(i)})
	}
	return result, nil
}

func syntheticMessageID(i int) string {
	const hex = "0123456789abcdef"
	b := make([]byte, 8)
	for j := range b {
		b[j] = hex[(i+j)%16]
	}
	return string(b)
}
