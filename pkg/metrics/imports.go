package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ImportMetrics records import pipeline throughput per processing mode
// (sync/async).
type ImportMetrics struct {
	duration  *prometheus.HistogramVec
	rows      *prometheus.CounterVec
	rowErrors *prometheus.CounterVec
	jobs      *prometheus.CounterVec
}

// NewImportMetrics registers the import pipeline metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "import_job_duration_seconds",
		Help:    "Duration of import jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_processed_total",
		Help: "Rows successfully imported.",
	}, []string{"mode"})
	rowErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_failed_total",
		Help: "Rows skipped due to row-level errors.",
	}, []string{"mode"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_jobs_total",
		Help: "Import jobs by terminal status.",
	}, []string{"mode", "status"})
	reg.MustRegister(duration, rows, rowErrors, jobs)
	return &ImportMetrics{
		duration:  duration,
		rows:      rows,
		rowErrors: rowErrors,
		jobs:      jobs,
	}
}

// ObserveDuration records how long a job took in the given mode.
func (m *ImportMetrics) ObserveDuration(mode string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(mode)).Observe(duration.Seconds())
}

// AddRows counts successfully imported rows.
func (m *ImportMetrics) AddRows(mode string, n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

// AddRowErrors counts rows skipped for row-level errors.
func (m *ImportMetrics) AddRowErrors(mode string, n int) {
	if m == nil || m.rowErrors == nil || n <= 0 {
		return
	}
	m.rowErrors.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

// IncJob counts a job reaching a terminal status.
func (m *ImportMetrics) IncJob(mode, status string) {
	if m == nil || m.jobs == nil {
		return
	}
	m.jobs.WithLabelValues(normalizeLabel(mode), normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
