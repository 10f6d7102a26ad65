package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for status recomputation.
type Metrics struct {
	// Written status changes by scope and new status
	Transitions *prometheus.CounterVec

	// Recomputations that found the stored status unchanged
	Unchanged *prometheus.CounterVec

	RecomputeLatency *prometheus.HistogramVec
}

// New creates a Metrics instance with all progress metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_progress_transitions_total",
			Help: "Status changes written, by scope and new status",
		}, []string{"scope", "status"}),

		Unchanged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_progress_unchanged_total",
			Help: "Recomputations skipped because the status did not change",
		}, []string{"scope"}),

		RecomputeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formflow_progress_recompute_duration_seconds",
			Help:    "Duration of a status recomputation including store reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"scope"}),
	}
}

func (m *Metrics) IncrementTransition(scope, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(scope, status).Inc()
	}
}

func (m *Metrics) IncrementUnchanged(scope string) {
	if m != nil {
		m.Unchanged.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) ObserveRecompute(scope string, d time.Duration) {
	if m != nil {
		m.RecomputeLatency.WithLabelValues(scope).Observe(d.Seconds())
	}
}
