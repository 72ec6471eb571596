package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder publishes step timings, load volumes, and run
// outcomes to a Prometheus registry.
type PrometheusRecorder struct {
	stepDuration *prometheus.HistogramVec
	rowsLoaded   *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
}

var _ MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs a recorder and registers its
// collectors with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jobmart",
			Name:      "step_duration_seconds",
			Help:      "Duration of pipeline steps by outcome.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"step", "status"}),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobmart",
			Name:      "rows_loaded_total",
			Help:      "Rows accepted by each warehouse destination.",
		}, []string{"destination"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobmart",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jobmart",
			Name:      "run_duration_seconds",
			Help:      "Duration of whole pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 10),
		}),
	}
	reg.MustRegister(r.stepDuration, r.rowsLoaded, r.runs, r.runDuration)
	return r
}

// ObserveStep implements MetricsRecorder.
func (r *PrometheusRecorder) ObserveStep(step string, success bool, duration time.Duration) {
	r.stepDuration.WithLabelValues(step, status(success)).Observe(duration.Seconds())
}

// AddRowsLoaded implements MetricsRecorder.
func (r *PrometheusRecorder) AddRowsLoaded(destination string, rows int) {
	r.rowsLoaded.WithLabelValues(destination).Add(float64(rows))
}

// ObserveRun implements MetricsRecorder.
func (r *PrometheusRecorder) ObserveRun(success bool, duration time.Duration) {
	r.runs.WithLabelValues(status(success)).Inc()
	r.runDuration.Observe(duration.Seconds())
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
