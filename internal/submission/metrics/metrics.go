package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

type Metrics struct {
	Submissions      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	IndexFailures    prometheus.Counter
	ReviewDuration   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_submissions_total",
			Help: "Answer submissions by outcome",
		}, []string{"outcome"}),
		ValidationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "formflow_validation_errors_total",
			Help: "Field validation errors by kind",
		}, []string{"kind"}),
		IndexFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "formflow_uniqueness_index_failures_total",
			Help: "Unique values that could not be indexed after an accepted submission",
		}),
		ReviewDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "formflow_review_build_duration_seconds",
			Help:    "Time to build a task review",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementSubmission(outcome string) {
	if m != nil {
		m.Submissions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementValidationError(kind string) {
	if m != nil {
		m.ValidationErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) IncrementIndexFailure() {
	if m != nil {
		m.IndexFailures.Inc()
	}
}

func (m *Metrics) ObserveReview(d time.Duration) {
	if m != nil {
		m.ReviewDuration.Observe(d.Seconds())
	}
}
