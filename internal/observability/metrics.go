package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "resume_builder"

// Metrics holds every collector the service exports. A nil *Metrics is
// valid and records nothing, so library code never has to check.
type Metrics struct {
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	requestsInFlight prometheus.Gauge

	compileDuration prometheus.Histogram
	compileTotal    *prometheus.CounterVec
	renderTotal     *prometheus.CounterVec
	renderCache     *prometheus.CounterVec
	matchScore      prometheus.Histogram
	reorderTotal    *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry, including the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests served.",
			},
			[]string{"method", "path", "status"},
		),
		requestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "HTTP requests currently being served.",
			},
		),
		compileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "latex",
				Name:      "compile_duration_seconds",
				Help:      "Time to compile a resume tree into LaTeX source.",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
			},
		),
		compileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "latex",
				Name:      "compile_total",
				Help:      "LaTeX compilations by outcome.",
			},
			[]string{"outcome"},
		),
		renderTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pdf",
				Name:      "render_total",
				Help:      "PDF renders by result code.",
			},
			[]string{"code"},
		),
		renderCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pdf",
				Name:      "cache_lookups_total",
				Help:      "PDF cache lookups by result.",
			},
			[]string{"result"},
		),
		matchScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "match",
				Name:      "score",
				Help:      "Distribution of keyword match scores.",
				Buckets:   prometheus.LinearBuckets(0, 10, 11),
			},
		),
		reorderTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ordering",
				Name:      "reorders_total",
				Help:      "Reorder batches by parent kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.requestTotal, m.requestsInFlight,
		m.compileDuration, m.compileTotal,
		m.renderTotal, m.renderCache,
		m.matchScore, m.reorderTotal,
	)
	return m
}

// RequestStarted increments the in-flight gauge and returns the matching
// completion callback.
func (m *Metrics) RequestStarted() func(method, path string, status int) {
	if m == nil {
		return func(string, string, int) {}
	}
	start := time.Now()
	m.requestsInFlight.Inc()
	return func(method, path string, status int) {
		m.requestsInFlight.Dec()
		labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
		m.requestDuration.With(labels).Observe(time.Since(start).Seconds())
		m.requestTotal.With(labels).Inc()
	}
}

// ObserveCompile records one compile attempt.
func (m *Metrics) ObserveCompile(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.compileDuration.Observe(d.Seconds())
	m.compileTotal.WithLabelValues(outcome(err)).Inc()
}

// ObserveRender records a render result; code is "ok" on success.
func (m *Metrics) ObserveRender(code string) {
	if m == nil {
		return
	}
	m.renderTotal.WithLabelValues(code).Inc()
}

// ObserveRenderCache records a cache hit or miss.
func (m *Metrics) ObserveRenderCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.renderCache.WithLabelValues(result).Inc()
}

// ObserveMatch records a computed match score.
func (m *Metrics) ObserveMatch(score float64) {
	if m == nil {
		return
	}
	m.matchScore.Observe(score)
}

// ObserveReorder records one reorder batch.
func (m *Metrics) ObserveReorder(kind string, err error) {
	if m == nil {
		return
	}
	m.reorderTotal.WithLabelValues(kind, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
