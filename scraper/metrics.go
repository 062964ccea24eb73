package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the catalog pipeline.
type Metrics struct {
	Registry           *prometheus.Registry
	NavigationsTotal   *prometheus.CounterVec
	NavigationDuration prometheus.Histogram
	RetriesTotal       prometheus.Counter
	ErrorsTotal        *prometheus.CounterVec
	UpsertedTotal      *prometheus.CounterVec
	SkippedTotal       *prometheus.CounterVec
	RunsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	navigations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_navigations_total",
			Help: "Total page navigations issued by the catalog pipeline.",
		},
		[]string{"result"},
	)
	navigationDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_navigation_duration_seconds",
			Help:    "Page load latency.",
			Buckets: prometheus.DefBuckets,
		},
	)
	retries := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_navigation_retries_total",
			Help: "Total number of navigation retries.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Total number of pipeline errors by type.",
		},
		[]string{"error_type"},
	)
	upserted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_products_upserted_total",
			Help: "Products written to the catalog.",
		},
		[]string{"manufacturer"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_pages_skipped_total",
			Help: "Pages skipped by the orchestrator.",
		},
		[]string{"manufacturer", "reason"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_manufacturer_runs_total",
			Help: "Manufacturer runs by final status.",
		},
		[]string{"status"},
	)

	registry.MustRegister(navigations, navigationDuration, retries, errorsTotal, upserted, skipped, runs)

	return &Metrics{
		Registry:           registry,
		NavigationsTotal:   navigations,
		NavigationDuration: navigationDuration,
		RetriesTotal:       retries,
		ErrorsTotal:        errorsTotal,
		UpsertedTotal:      upserted,
		SkippedTotal:       skipped,
		RunsTotal:          runs,
	}
}

// IncNavigation increments the navigations counter.
func (m *Metrics) IncNavigation(result string) {
	if m == nil {
		return
	}
	m.NavigationsTotal.WithLabelValues(result).Inc()
}

// ObserveDuration records a page load duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.NavigationDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.RetriesTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncUpserted counts one product written for manufacturer.
func (m *Metrics) IncUpserted(manufacturer string) {
	if m == nil {
		return
	}
	m.UpsertedTotal.WithLabelValues(manufacturer).Inc()
}

// IncSkipped counts one skipped page.
func (m *Metrics) IncSkipped(manufacturer, reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(manufacturer, reason).Inc()
}

// IncRun counts one finished manufacturer run.
func (m *Metrics) IncRun(status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
}
