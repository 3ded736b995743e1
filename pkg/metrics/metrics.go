// Package metrics defines the Prometheus collectors used by the services
// and a server that exposes them for scraping.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	ParseRequestsTotal     *prometheus.CounterVec
	ParseLatency           *prometheus.HistogramVec
	ParsedFieldsCount      prometheus.Histogram
	SuggestRequestsTotal   prometheus.Counter
	CacheHitsTotal         prometheus.Counter
	CacheMissesTotal       prometheus.Counter
	AnalyticsEventsDropped prometheus.Counter
	CircuitBreakerState    *prometheus.GaugeVec
}

// New creates all collectors and registers them with reg. A nil reg uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		ParseRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_query_parse_total",
				Help: "Parsed job queries by result (matched, unmatched, empty).",
			},
			[]string{"result"},
		),
		ParseLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "job_query_parse_latency_seconds",
				Help:    "Job query parse latency in seconds, including cache lookups.",
				Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05},
			},
			[]string{"cache_status"},
		),
		ParsedFieldsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "job_query_matched_fields",
				Help:    "Number of filter fields populated per parsed query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
			},
		),
		SuggestRequestsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "job_query_suggest_total",
				Help: "Total dropdown suggestion requests.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_cache_hits_total",
				Help: "Total number of parse cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "parse_cache_misses_total",
				Help: "Total number of parse cache misses.",
			},
		),
		AnalyticsEventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Parse events dropped because the collector buffer was full.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.ParseRequestsTotal,
		m.ParseLatency,
		m.ParsedFieldsCount,
		m.SuggestRequestsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.AnalyticsEventsDropped,
		m.CircuitBreakerState,
	)

	return m
}
