// Package metrics provides Prometheus metrics for the generation pipeline
// and the scraper adapter.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GenerationsTotal   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ScrapesTotal       *prometheus.CounterVec
	DebugArtifacts     *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkpitch_generations_total",
				Help: "Total number of message generations by status",
			},
			[]string{"mode", "status"},
		),
		GenerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "linkpitch_generation_duration_seconds",
				Help:    "Duration of message generations in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ScrapesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkpitch_scrapes_total",
				Help: "Total number of scrape attempts by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		DebugArtifacts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkpitch_debug_artifacts_total",
				Help: "Debug artifact writes by status",
			},
			[]string{"status"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkpitch_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveGeneration(mode, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(mode, status).Inc()
	m.GenerationDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveScrape(kind, outcome string) {
	if m == nil {
		return
	}
	m.ScrapesTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveDebugArtifact(status string) {
	if m == nil {
		return
	}
	m.DebugArtifacts.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, status).Inc()
}
