package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ResolutionMetrics contains Prometheus metrics for channel resolution.
// It implements the application layer's ResolutionMetrics interface.
type ResolutionMetrics struct {
	ResolvedTotal  *prometheus.CounterVec
	DuplicatePairs prometheus.Counter
	FailuresTotal  prometheus.Counter
}

// NewResolutionMetrics creates and registers resolution metrics with the given registerer.
func NewResolutionMetrics(registerer prometheus.Registerer) *ResolutionMetrics {
	metrics := &ResolutionMetrics{
		ResolvedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "liza_channel_resolved_total",
				Help: "Total number of resolved 1:1 channels",
			},
			[]string{"outcome"}, // outcome: created/reused
		),
		DuplicatePairs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liza_channel_duplicate_pairs_total",
			Help: "Total number of pairs observed with more than one 1:1 channel",
		}),
		FailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "liza_channel_resolution_failures_total",
			Help: "Total number of failed channel resolutions",
		}),
	}

	registerer.MustRegister(
		metrics.ResolvedTotal,
		metrics.DuplicatePairs,
		metrics.FailuresTotal,
	)

	return metrics
}

// ObserveResolved records one successful resolution.
func (m *ResolutionMetrics) ObserveResolved(created bool) {
	outcome := "reused"
	if created {
		outcome = "created"
	}
	m.ResolvedTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuplicatePair records a pair found with more than one channel.
func (m *ResolutionMetrics) ObserveDuplicatePair() {
	m.DuplicatePairs.Inc()
}

// ObserveFailure records a failed resolution.
func (m *ResolutionMetrics) ObserveFailure() {
	m.FailuresTotal.Inc()
}
