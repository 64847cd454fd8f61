// Package metrics defines the observational surface eventchannel reports
// through: per-type queue depth, producers currently blocked on a full
// queue, published-event counts, and retry attempts. None of it feeds
// back into control flow — it exists purely so an operator can see the
// system working, never to shape it (rate shaping beyond retry backoff is
// an explicit non-goal of the dispatch layer itself).
//
// The default implementation is backed by github.com/prometheus/client_golang.
// A Noop implementation is provided for tests and for callers that don't
// want a Prometheus registry in the mix.
package metrics
