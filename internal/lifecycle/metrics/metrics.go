package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the lifecycle engine.
type Metrics struct {
	JobsStarted     prometheus.Counter
	JobsCompleted   *prometheus.CounterVec
	StepsExecuted   *prometheus.CounterVec
	StepRetries     *prometheus.CounterVec
	RecordsAffected *prometheus.CounterVec
	CascadeDuration prometheus.Histogram
	ExportsServed   prometheus.Counter
	ExportDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		JobsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoutpost_erasure_jobs_started_total",
			Help: "Total number of erasure cascades started, including resumes",
		}),
		JobsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpost_erasure_jobs_finished_total",
			Help: "Total number of erasure cascades finished, by terminal status",
		}, []string{"status"}),
		StepsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpost_erasure_steps_total",
			Help: "Total number of cascade steps, by entity type and outcome",
		}, []string{"entity_type", "outcome"}),
		StepRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpost_erasure_step_retries_total",
			Help: "Total number of transient-failure retries, by entity type",
		}, []string{"entity_type"}),
		RecordsAffected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scoutpost_erasure_records_affected_total",
			Help: "Total number of records deleted, anonymized or detached, by entity type",
		}, []string{"entity_type"}),
		CascadeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoutpost_erasure_cascade_duration_seconds",
			Help:    "End-to-end duration of erasure cascade runs",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		ExportsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scoutpost_exports_generated_total",
			Help: "Total number of data export bundles assembled",
		}),
		ExportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scoutpost_export_duration_seconds",
			Help:    "Duration of export bundle assembly",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveCascade records a finished cascade run.
func (m *Metrics) ObserveCascade(status string, elapsed time.Duration) {
	m.JobsCompleted.WithLabelValues(status).Inc()
	m.CascadeDuration.Observe(elapsed.Seconds())
}

// ObserveStep records a finished cascade step.
func (m *Metrics) ObserveStep(entityType, outcome string, records int) {
	m.StepsExecuted.WithLabelValues(entityType, outcome).Inc()
	if records > 0 {
		m.RecordsAffected.WithLabelValues(entityType).Add(float64(records))
	}
}

// ObserveExport records a finished export assembly.
func (m *Metrics) ObserveExport(elapsed time.Duration) {
	m.ExportsServed.Inc()
	m.ExportDuration.Observe(elapsed.Seconds())
}
