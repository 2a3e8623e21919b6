package monitoring

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal *prometheus.CounterVec

	// Batch metrics
	BatchesTotal  *prometheus.CounterVec
	BatchDuration *prometheus.HistogramVec
	BatchFailed   *prometheus.GaugeVec
	LastRun       prometheus.Gauge

	// Snapshot for reports - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds running totals for in-process inspection
type MetricsSnapshot struct {
	Batches  int64
	Requests int64
	Failures int64
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeprov_requests_total",
				Help: "Total number of pipe requests processed",
			},
			[]string{"operation", "outcome", "reason"},
		),

		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pipeprov_batches_total",
				Help: "Total number of batches processed",
			},
			[]string{"operation"},
		),
		BatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeprov_batch_duration_seconds",
				Help:    "Batch duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"operation"},
		),
		BatchFailed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pipeprov_last_batch_failed",
				Help: "Number of failed requests in the most recent batch",
			},
			[]string{"operation"},
		),
		LastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pipeprov_last_run_timestamp_seconds",
				Help: "Unix time of the most recent batch",
			},
		),
	}
}

// Registry returns the registry all metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records one processed request
func (m *Metrics) RecordRequest(operation, outcome, reason string) {
	m.RequestsTotal.WithLabelValues(operation, outcome, reason).Inc()

	m.mu.Lock()
	m.snapshot.Requests++
	if reason != "" {
		m.snapshot.Failures++
	}
	m.mu.Unlock()
}

// RecordBatch records a completed batch
func (m *Metrics) RecordBatch(operation string, failed int, duration time.Duration) {
	m.BatchesTotal.WithLabelValues(operation).Inc()
	m.BatchDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.BatchFailed.WithLabelValues(operation).Set(float64(failed))
	m.LastRun.SetToCurrentTime()

	m.mu.Lock()
	m.snapshot.Batches++
	m.mu.Unlock()
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// WriteTextfile writes all metrics in the text exposition format, atomically
// replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
