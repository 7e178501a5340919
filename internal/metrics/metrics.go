// Package metrics exposes deployment activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector implements orchestrator.Observer on a private registry.
type Collector struct {
	registry *prometheus.Registry

	deployments *prometheus.CounterVec
	duration    prometheus.Histogram
	inflight    prometheus.Gauge
	runs        *prometheus.CounterVec
}

var _ orchestrator.Observer = (*Collector)(nil)

// New creates a collector with its metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		deployments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deploygrid_deployments_total",
				Help: "Number of component deployments by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deploygrid_deploy_duration_seconds",
				Help:    "Time taken to deploy one component.",
				Buckets: prometheus.DefBuckets,
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "deploygrid_inflight_deployments",
				Help: "Number of deployments currently in progress.",
			},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deploygrid_runs_total",
				Help: "Number of finished runs by terminal state.",
			},
			[]string{"state"},
		),
	}
	c.registry.MustRegister(c.deployments, c.duration, c.inflight, c.runs)
	return c
}

func (c *Collector) DeployStarted(name string) {
	c.inflight.Inc()
}

func (c *Collector) DeployFinished(name string, elapsed time.Duration, err error) {
	c.inflight.Dec()
	c.duration.Observe(elapsed.Seconds())
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.deployments.WithLabelValues(outcome).Inc()
}

// RunFinished counts a run that reached state.
func (c *Collector) RunFinished(state orchestrator.State) {
	c.runs.WithLabelValues(string(state)).Inc()
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
