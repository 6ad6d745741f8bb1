package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics provides Prometheus metrics for hydrate.
type Metrics struct {
	config MetricsConfig

	// Cycle metrics
	cyclesTotal   prometheus.Counter
	cycleDuration prometheus.Histogram

	// Entry metrics
	entriesScanned    prometheus.Counter
	entriesExcluded   prometheus.Counter
	entriesDispatched *prometheus.CounterVec
	waitDuration      *prometheus.HistogramVec
	triggerCalls      prometheus.Counter

	// System metrics
	activeWaits    prometheus.Gauge
	pendingEntries prometheus.Gauge

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates a metrics collector with the given configuration. When
// disabled, all record methods are no-ops.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of scan cycles performed",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of scan cycles in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),

		entriesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_scanned_total",
			Help:      "Total number of placeholder entries found by scans",
		}),
		entriesExcluded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_excluded_total",
			Help:      "Total number of entries skipped by the exclusion pattern",
		}),
		entriesDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_dispatched_total",
				Help:      "Total number of dispatched entries by terminal status",
			},
			[]string{"status"},
		),
		waitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "entry_wait_duration_seconds",
				Help:      "Time spent waiting on a single entry in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 4, 10),
			},
			[]string{"status"},
		),
		triggerCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trigger_calls_total",
			Help:      "Total number of materialization trigger invocations",
		}),

		activeWaits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_waits",
			Help:      "Current number of entries being waited on",
		}),
		pendingEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_entries",
			Help:      "Entries dispatched in the current cycle that are not yet terminal",
		}),
	}

	registry.MustRegister(
		m.cyclesTotal,
		m.cycleDuration,
		m.entriesScanned,
		m.entriesExcluded,
		m.entriesDispatched,
		m.waitDuration,
		m.triggerCalls,
		m.activeWaits,
		m.pendingEntries,
	)

	return m, nil
}

// RecordCycle records a completed scan cycle.
func (m *Metrics) RecordCycle(scanned, excluded int, duration time.Duration) {
	if m.cyclesTotal == nil {
		return
	}
	m.cyclesTotal.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	m.entriesScanned.Add(float64(scanned))
	m.entriesExcluded.Add(float64(excluded))
}

// RecordDispatch records an entry entering the dispatch set.
func (m *Metrics) RecordDispatch() {
	if m.pendingEntries == nil {
		return
	}
	m.pendingEntries.Inc()
	m.activeWaits.Inc()
}

// RecordOutcome records a terminal task result.
func (m *Metrics) RecordOutcome(status string, duration time.Duration, attempts int) {
	if m.entriesDispatched == nil {
		return
	}
	m.entriesDispatched.WithLabelValues(status).Inc()
	m.waitDuration.WithLabelValues(status).Observe(duration.Seconds())
	m.triggerCalls.Add(float64(attempts))
	m.pendingEntries.Dec()
	m.activeWaits.Dec()
}

// Handler returns an HTTP handler serving the metrics registry.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer serves metrics on addr for the lifetime of the process. Serve
// errors other than a clean shutdown are logged, not fatal: metrics are an
// operator convenience, not part of the run contract.
func (m *Metrics) StartServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	m.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}

// Shutdown stops the metrics server, if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
