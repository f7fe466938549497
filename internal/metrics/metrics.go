// Package metrics exposes Prometheus instrumentation for report jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the report job collectors. A nil *Recorder records nothing.
type Recorder struct {
	jobs         *prometheus.CounterVec
	pairFailures *prometheus.CounterVec
	renders      *prometheus.CounterVec
	exports      *prometheus.CounterVec
	jobDuration  prometheus.Histogram
	points       prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxreport_jobs_total",
			Help: "Report jobs by outcome",
		}, []string{"outcome"}),
		pairFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxreport_pair_failures_total",
			Help: "Station/parameter fetches that failed and were degraded to an empty series",
		}, []string{"parameter"}),
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxreport_renders_total",
			Help: "Chart renders by outcome",
		}, []string{"outcome"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wxreport_exports_total",
			Help: "Table exports by outcome",
		}, []string{"outcome"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wxreport_job_duration_seconds",
			Help:    "Wall time of report jobs",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 14), // 50ms to ~7min
		}),
		points: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wxreport_points_total",
			Help: "Series points produced by the fetch stage",
		}),
	}

	reg.MustRegister(r.jobs, r.pairFailures, r.renders, r.exports, r.jobDuration, r.points)
	return r
}

func (r *Recorder) JobFinished(outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(outcome).Inc()
	r.jobDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) PairFailed(parameter string) {
	if r == nil {
		return
	}
	r.pairFailures.WithLabelValues(parameter).Inc()
}

func (r *Recorder) Rendered(ok bool) {
	if r == nil {
		return
	}
	r.renders.WithLabelValues(outcome(ok)).Inc()
}

func (r *Recorder) Exported(ok bool) {
	if r == nil {
		return
	}
	r.exports.WithLabelValues(outcome(ok)).Inc()
}

func (r *Recorder) PointsFetched(n int) {
	if r == nil {
		return
	}
	r.points.Add(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
