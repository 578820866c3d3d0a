// Package metrics exposes pipeline counters over Prometheus
package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	RunsStarted       atomic.Uint64
	RunsCompleted     atomic.Uint64
	RunsSkipped       atomic.Uint64 // runs that found no images to analyze
	FramesProcessed   atomic.Uint64
	PublishFailures   atomic.Uint64
	LastExtendSeconds atomic.Uint64

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_runs_started_total",
			Help: "Total pipeline runs started",
		},
		func() float64 { return float64(m.RunsStarted.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_runs_completed_total",
			Help: "Total pipeline runs that published a decision",
		},
		func() float64 { return float64(m.RunsCompleted.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_runs_skipped_total",
			Help: "Total pipeline runs skipped because no images were available",
		},
		func() float64 { return float64(m.RunsSkipped.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_frames_processed_total",
			Help: "Total snapshots analyzed",
		},
		func() float64 { return float64(m.FramesProcessed.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_publish_failures_total",
			Help: "Total failures writing the decision state",
		},
		func() float64 { return float64(m.PublishFailures.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "pedwatch_extend_seconds",
			Help: "Green-light extension of the most recently published decision",
		},
		func() float64 { return float64(m.LastExtendSeconds.Load()) },
	))

	return m
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
