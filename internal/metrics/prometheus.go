package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus is a Recorder backed by client_golang collectors. Register
// it against whatever registry the host process already exposes on
// /metrics; the zero value is not usable, construct with NewPrometheus.
type Prometheus struct {
	depth      *prometheus.GaugeVec
	blocked    *prometheus.GaugeVec
	published  *prometheus.CounterVec
	retryAttem *prometheus.CounterVec
}

// NewPrometheus creates collectors under the given namespace (e.g.
// "eventchannel") and registers them with reg. Passing a fresh
// prometheus.NewRegistry() is fine for tests; prometheus.DefaultRegisterer
// is the usual production choice.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	p := &Prometheus{
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Number of events currently buffered per event type.",
		}, []string{"event_type"}),
		blocked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_producers_blocked",
			Help:      "Number of producers currently parked in Write because the queue is full.",
		}, []string{"event_type"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_entries_total",
			Help:      "Number of batch entries handed to the sink, by outcome.",
		}, []string{"event_type", "outcome"}),
		retryAttem: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_retry_attempts_total",
			Help:      "Number of retry attempts made against the sink.",
		}, []string{"event_type"}),
	}
	for _, c := range []prometheus.Collector{p.depth, p.blocked, p.published, p.retryAttem} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) SetQueueDepth(eventType string, depth int) {
	p.depth.WithLabelValues(eventType).Set(float64(depth))
}

func (p *Prometheus) SetQueueBlocked(eventType string, blocked int) {
	p.blocked.WithLabelValues(eventType).Set(float64(blocked))
}

func (p *Prometheus) IncPublished(eventType string, outcome Outcome, n int) {
	p.published.WithLabelValues(eventType, string(outcome)).Add(float64(n))
}

func (p *Prometheus) IncRetryAttempt(eventType string) {
	p.retryAttem.WithLabelValues(eventType).Inc()
}
