// Package metrics exposes Prometheus counters and gauges for the job engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/10thony/CobecDev-sub005/internal/models"
)

// Collector owns the engine's metric instruments. Each Collector registers on
// its own registry so tests can create collectors freely.
type Collector struct {
	registry *prometheus.Registry

	jobsStarted   *prometheus.CounterVec
	jobsFinished  *prometheus.CounterVec
	unitsTotal    *prometheus.CounterVec
	reviewTotal   *prometheus.CounterVec
	activeRunners prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		jobsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bidhunt_jobs_started_total",
			Help: "Job runs launched, including resumes after pause or restart",
		}, []string{"kind"}),
		jobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bidhunt_jobs_finished_total",
			Help: "Job runs that reached a terminal or paused state",
		}, []string{"kind", "status"}),
		unitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bidhunt_units_processed_total",
			Help: "Work units processed, by outcome",
		}, []string{"kind", "outcome"}),
		reviewTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bidhunt_review_resolved_total",
			Help: "Review items resolved by a human decision",
		}, []string{"decision"}),
		activeRunners: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bidhunt_active_runners",
			Help: "Job runner goroutines currently executing",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		c.jobsStarted,
		c.jobsFinished,
		c.unitsTotal,
		c.reviewTotal,
		c.activeRunners,
	)
	return c
}

func (c *Collector) JobStarted(kind models.JobKind) {
	c.jobsStarted.WithLabelValues(string(kind)).Inc()
	c.activeRunners.Inc()
}

// JobFinished records the state a run settled in. status is the job status
// after the run loop returned, so paused counts as finished for the runner.
func (c *Collector) JobFinished(kind models.JobKind, status models.JobStatus) {
	c.jobsFinished.WithLabelValues(string(kind), string(status)).Inc()
	c.activeRunners.Dec()
}

func (c *Collector) UnitProcessed(kind models.JobKind, outcome models.UnitOutcome) {
	c.unitsTotal.WithLabelValues(string(kind), string(outcome)).Inc()
}

func (c *Collector) ReviewResolved(accepted bool) {
	decision := "rejected"
	if accepted {
		decision = "accepted"
	}
	c.reviewTotal.WithLabelValues(decision).Inc()
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
