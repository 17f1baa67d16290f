// Package metrics defines the Prometheus instrumentation for the service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics contains Prometheus metrics for identity sync.
type SessionMetrics struct {
	SyncTotal    *prometheus.CounterVec
	SyncDuration prometheus.Histogram
	SyncInFlight prometheus.Gauge
}

// NewSessionMetrics creates and registers session metrics with the given registerer.
func NewSessionMetrics(registerer prometheus.Registerer) *SessionMetrics {
	metrics := &SessionMetrics{
		SyncTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liza_session_sync_total",
				Help: "Total number of identity sync attempts",
			},
			[]string{"status"}, // status: success/failed/rejected
		),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "liza_session_sync_duration_seconds",
			Help:    "Time to complete one identity sync",
			Buckets: prometheus.DefBuckets,
		}),
		SyncInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "liza_session_sync_in_flight",
			Help: "Number of identity syncs currently in flight",
		}),
	}

	registerer.MustRegister(
		metrics.SyncTotal,
		metrics.SyncDuration,
		metrics.SyncInFlight,
	)

	return metrics
}

// ObserveSync records one finished sync attempt.
func (m *SessionMetrics) ObserveSync(status string, duration time.Duration) {
	m.SyncTotal.WithLabelValues(status).Inc()
	m.SyncDuration.Observe(duration.Seconds())
}
