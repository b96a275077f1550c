package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream provider call rate by provider (checkwx, weatherapi). Watch for: error vs success ratio.
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream provider latency. Watch for: p95 > 2s (upstream degradation), p99 > timeout.
	UpstreamCallDuration *prometheus.HistogramVec

	// Cache reads by keyspace (metar, waypoint, status) and result (hit, miss, error).
	CacheReadsTotal *prometheus.CounterVec

	// Refresh job runs by job (aviation, waypoint) and trigger (scheduled, manual).
	RefreshRunsTotal *prometheus.CounterVec

	// Per-item refresh outcomes by job and outcome (success, failure).
	RefreshItemsTotal *prometheus.CounterVec

	// Refresh job duration. Waypoint runs include inter-batch pauses.
	RefreshDurationSeconds *prometheus.HistogramVec

	// Batch weather queries served.
	BatchQueriesTotal prometheus.Counter

	// Per-point resolution outcomes by source (metar, waypoint_cache, cache_miss, error).
	BatchPointsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamCallsTotal",
			Help: "Total number of upstream weather provider calls",
		},
		[]string{"provider", "status"},
	)
	UpstreamCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamCallDurationSeconds",
			Help:    "Upstream provider latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "status"},
	)
	CacheReadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheReadsTotal",
			Help: "Cache reads by keyspace and result (hit, miss, error)",
		},
		[]string{"keyspace", "result"},
	)
	RefreshRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refreshRunsTotal",
			Help: "Refresh job runs by job and trigger (scheduled, manual)",
		},
		[]string{"job", "trigger"},
	)
	RefreshItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refreshItemsTotal",
			Help: "Per-item refresh outcomes by job",
		},
		[]string{"job", "outcome"},
	)
	RefreshDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refreshDurationSeconds",
			Help:    "Refresh job duration in seconds (per run)",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"job"},
	)
	BatchQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "batchQueriesTotal",
			Help: "Total number of batch weather queries",
		},
	)
	BatchPointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batchPointsTotal",
			Help: "Resolved batch query points by source",
		},
		[]string{"source"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamCallDuration,
		CacheReadsTotal,
		RefreshRunsTotal, RefreshItemsTotal, RefreshDurationSeconds,
		BatchQueriesTotal, BatchPointsTotal,
		RateLimitDeniedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
