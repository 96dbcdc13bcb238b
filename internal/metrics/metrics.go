package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for sitemap fetching and page capture.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	CapturesTotal   *prometheus.CounterVec
	CaptureDuration prometheus.Histogram
	ErrorsTotal     *prometheus.CounterVec
	PagesQueued     prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenshotter_http_requests_total",
			Help: "HTTP requests issued while locating and parsing sitemaps.",
		},
		[]string{"phase"},
	)
	captures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenshotter_captures_total",
			Help: "Page captures by outcome.",
		},
		[]string{"status"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "screenshotter_capture_duration_seconds",
			Help:    "Wall time spent capturing a single page.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screenshotter_errors_total",
			Help: "Errors by kind.",
		},
		[]string{"error_type"},
	)
	queued := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "screenshotter_pages_remaining",
			Help: "Pages of the current run not yet attempted.",
		},
	)

	registry.MustRegister(requests, captures, duration, errorsTotal, queued)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		CapturesTotal:   captures,
		CaptureDuration: duration,
		ErrorsTotal:     errorsTotal,
		PagesQueued:     queued,
	}
}

// IncRequest counts an HTTP request for phase (probe, robots, sitemap).
func (m *Metrics) IncRequest(phase string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(phase).Inc()
}

// ObserveCapture records one capture outcome and its duration.
func (m *Metrics) ObserveCapture(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.CapturesTotal.WithLabelValues(status).Inc()
	m.CaptureDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a kind label.
func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// SetRemaining updates the remaining-pages gauge.
func (m *Metrics) SetRemaining(n int) {
	if m == nil {
		return
	}
	m.PagesQueued.Set(float64(n))
}
