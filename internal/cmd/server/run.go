// Package serverrun wires the four core components (queue, raiser,
// worker, dispatcher) into a runnable process and blocks until told to
// stop. It is intentionally thin: everything it does is construction and
// lifecycle glue, not core behavior.
package serverrun

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/notiflow/eventchannel/internal/admissionfilter"
	"github.com/notiflow/eventchannel/internal/dispatch"
	"github.com/notiflow/eventchannel/internal/eventconfig"
	"github.com/notiflow/eventchannel/internal/eventqueue"
	"github.com/notiflow/eventchannel/internal/metrics"
	"github.com/notiflow/eventchannel/internal/raiser"
	"github.com/notiflow/eventchannel/internal/sink"
	"github.com/notiflow/eventchannel/internal/worker"
	logpkg "github.com/notiflow/eventchannel/pkg/log"
)

// OrderCreated is the one demonstration event type this host registers.
// A real deployment registers its own domain event types the same way
// this function does for OrderCreated; the core neither knows nor cares
// what T is.
type OrderCreated struct {
	OrderID    string  `json:"orderId"`
	Amount     float64 `json:"amount"`
	CustomerID string  `json:"customerId"`
}

// Options configures Run.
type Options struct {
	// ConfigPath, if set, is a JSON or YAML file eventconfig.Load reads
	// for the OrderCreated channel.
	ConfigPath string
	// TopicID overrides whatever ConfigPath/the environment set, if
	// non-empty.
	TopicID string
	// SinkDryRun swaps the real SNS sink for an in-memory one that
	// always succeeds — useful for smoke-testing the wiring without AWS
	// credentials.
	SinkDryRun bool
	// MetricsAddr, if non-empty, serves Prometheus metrics at /metrics.
	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Run builds the pipeline and blocks until ctx is cancelled (or a
// SIGINT/SIGTERM arrives), then drains the dispatcher within its
// shutdown deadline.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  getenvDefault("EVENTCHANNEL_LOG_LEVEL", opts.LogLevel),
		Format: getenvDefault("EVENTCHANNEL_LOG_FORMAT", opts.LogFormat),
	})
	if err != nil {
		return fmt.Errorf("serverrun: build logger: %w", err)
	}
	logpkg.RedirectStdLog(logger)

	cfg, err := eventconfig.Load("OrderCreated", opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("serverrun: load config: %w", err)
	}
	if opts.TopicID != "" {
		cfg.TopicID = opts.TopicID
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("serverrun: %w", err)
	}

	var sinkClient sink.Client
	if opts.SinkDryRun {
		sinkClient = sink.NewMemory()
		logger.Warn("sink dry-run enabled: publishes are not sent to SNS")
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(sctx)
		if err != nil {
			return fmt.Errorf("serverrun: load aws config: %w", err)
		}
		sinkClient = sink.NewSNS(sns.NewFromConfig(awsCfg))
	}

	filter, err := admissionfilter.Compile(cfg.AdmissionFilter)
	if err != nil {
		return fmt.Errorf("serverrun: compile admission filter: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewPrometheus(registry, "eventchannel")
	if err != nil {
		return fmt.Errorf("serverrun: build metrics recorder: %w", err)
	}
	var metricsSrv *http.Server
	if opts.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: opts.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", logpkg.Err(err))
			}
		}()
	}

	capacity := cfg.BoundedCapacity
	if !cfg.UseBoundedCapacity {
		capacity = 0
	}
	queue := eventqueue.New[OrderCreated](eventqueue.Options{
		Capacity:  capacity,
		EventType: "OrderCreated",
		Metrics:   recorder,
	})

	r, err := raiser.New(logger)
	if err != nil {
		return fmt.Errorf("serverrun: build raiser: %w", err)
	}
	raiser.RegisterChannel(r, queue, filter)

	w, err := worker.New(queue.Reader(), worker.Config{
		EventType:  "OrderCreated",
		TopicID:    cfg.TopicID,
		SinkClient: sinkClient,
		Policy:     cfg.Policy(),
		Metrics:    recorder,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("serverrun: build worker: %w", err)
	}

	d, err := dispatch.New(logger)
	if err != nil {
		return fmt.Errorf("serverrun: build dispatcher: %w", err)
	}
	if err := d.Register("OrderCreated", w); err != nil {
		return fmt.Errorf("serverrun: register worker: %w", err)
	}
	if err := d.Start(sctx); err != nil {
		return fmt.Errorf("serverrun: start dispatcher: %w", err)
	}

	logger.Info("eventchannel started", logpkg.Str("topic", cfg.TopicID))
	<-sctx.Done()
	logger.Info("eventchannel stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), dispatch.ShutdownDeadline+time.Second)
	defer cancel()
	stopErr := d.Stop(stopCtx)

	if metricsSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return stopErr
}
