// Package metrics exposes Prometheus metrics for the content pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// MetricsNamespace is the namespace for all pipeline metrics.
	MetricsNamespace = "blogsmith"

	// MetricsSubsystem is the subsystem for pipeline metrics.
	MetricsSubsystem = "pipeline"
)

// Metrics holds all Prometheus metrics for the content pipeline.
type Metrics struct {
	StageAttemptsTotal   *prometheus.CounterVec
	StageFailuresTotal   *prometheus.CounterVec
	StageDurationSeconds *prometheus.HistogramVec

	DraftsCreatedTotal   prometheus.Counter
	DraftsPublishedTotal *prometheus.CounterVec
}

// New creates and registers all pipeline metrics. Passing a nil registerer
// falls back to the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &Metrics{
		StageAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "stage_attempts_total",
				Help:      "Total number of pipeline stage executions",
			},
			[]string{"stage"},
		),
		StageFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "stage_failures_total",
				Help:      "Total number of failed pipeline stage executions",
			},
			[]string{"stage"},
		),
		StageDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stage executions in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14), // 50ms to ~7min
			},
			[]string{"stage"},
		),
		DraftsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "drafts_created_total",
				Help:      "Total number of drafts created",
			},
		),
		DraftsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Subsystem: MetricsSubsystem,
				Name:      "drafts_published_total",
				Help:      "Total number of drafts pushed to the CMS",
			},
			[]string{"action"}, // created, updated
		),
	}
}

// RecordStage records one stage execution.
func (m *Metrics) RecordStage(stage string, durationSeconds float64, failed bool) {
	m.StageAttemptsTotal.WithLabelValues(stage).Inc()
	m.StageDurationSeconds.WithLabelValues(stage).Observe(durationSeconds)
	if failed {
		m.StageFailuresTotal.WithLabelValues(stage).Inc()
	}
}

// RecordDraftCreated records a new draft entering the pipeline.
func (m *Metrics) RecordDraftCreated() {
	m.DraftsCreatedTotal.Inc()
}

// RecordPublished records a draft reaching the CMS.
func (m *Metrics) RecordPublished(action string) {
	m.DraftsPublishedTotal.WithLabelValues(action).Inc()
}
