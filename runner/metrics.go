package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates run counters on a dedicated registry so embedding
// applications can expose or scrape them without touching the global
// one.
type Metrics struct {
	registry *prometheus.Registry

	RowsProcessed  prometheus.Counter
	RowsSucceeded  prometheus.Counter
	RowsFailed     prometheus.Counter
	FastFetches    prometheus.Counter
	BrowserFetches prometheus.Counter
	Fallbacks      prometheus.Counter
	Downloads      prometheus.Counter
	Conversions    prometheus.Counter
	ErrorsByStage  *prometheus.CounterVec
}

// NewMetrics builds the counter set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RowsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_rows_processed_total",
			Help: "Rows taken off the work queue.",
		}),
		RowsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_rows_succeeded_total",
			Help: "Rows that produced an image on disk.",
		}),
		RowsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_rows_failed_total",
			Help: "Rows that exhausted every transport without an image.",
		}),
		FastFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_fast_fetches_total",
			Help: "Product pages fetched over plain HTTP.",
		}),
		BrowserFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_browser_fetches_total",
			Help: "Product pages fetched through the browser.",
		}),
		Fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_browser_fallbacks_total",
			Help: "Rows where the fast path failed and the browser took over.",
		}),
		Downloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_image_downloads_total",
			Help: "Images written to the output directory.",
		}),
		Conversions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixgrab_image_conversions_total",
			Help: "Images normalized to PNG.",
		}),
		ErrorsByStage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixgrab_errors_total",
			Help: "Errors grouped by pipeline stage.",
		}, []string{"stage"}),
	}

	registry.MustRegister(
		m.RowsProcessed, m.RowsSucceeded, m.RowsFailed,
		m.FastFetches, m.BrowserFetches, m.Fallbacks,
		m.Downloads, m.Conversions, m.ErrorsByStage,
	)
	return m
}

// Registry exposes the underlying registry for scraping.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
