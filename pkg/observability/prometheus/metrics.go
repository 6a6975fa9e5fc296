// Package prometheus implements the observability hooks with Prometheus
// metrics.
//
//	m := prometheus.New(registry)
//	m.Register()
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
package prometheus

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/archlayout/pkg/observability"
)

// Metrics holds every archlayout metric and implements the planner, cache
// and HTTP hook interfaces.
type Metrics struct {
	// Planner
	PlansTotal      *prometheus.CounterVec
	PlanDuration    *prometheus.HistogramVec
	PlanNodes       prometheus.Histogram
	EngineFailures  prometheus.Counter
	ConflictsTotal  *prometheus.CounterVec
	PlansInProgress prometheus.Gauge

	// Cache
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheWriteBytes *prometheus.HistogramVec

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPErrorsTotal      *prometheus.CounterVec
}

// New creates the metrics on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		PlansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_plans_total",
				Help: "Total number of layouts planned",
			},
			[]string{"direction", "degraded"},
		),
		PlanDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archlayout_plan_duration_seconds",
				Help:    "Layout planning latency in seconds, engine included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"direction"},
		),
		PlanNodes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "archlayout_plan_nodes",
				Help:    "Number of positioned nodes per layout",
				Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000},
			},
		),
		EngineFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "archlayout_engine_failures_total",
				Help: "Layout engine errors and panics that produced a degraded result",
			},
		),
		ConflictsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_structural_conflicts_total",
				Help: "Structural relationships that were not applied",
			},
			[]string{"reason"},
		),
		PlansInProgress: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "archlayout_plans_in_progress",
				Help: "Layouts currently being planned",
			},
		),
		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_cache_hits_total",
				Help: "Cache hits by key type",
			},
			[]string{"key_type"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_cache_misses_total",
				Help: "Cache misses by key type",
			},
			[]string{"key_type"},
		),
		CacheWriteBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archlayout_cache_write_bytes",
				Help:    "Size of cache entries written",
				Buckets: []float64{1000, 10000, 100000, 1000000},
			},
			[]string{"key_type"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "archlayout_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPRequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "archlayout_http_requests_in_flight",
				Help: "Current number of HTTP requests being processed",
			},
		),
		HTTPErrorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "archlayout_http_errors_total",
				Help: "HTTP requests that failed with an error",
			},
			[]string{"method", "route"},
		),
	}
}

// Register installs m as the global planner, cache and HTTP hooks.
func (m *Metrics) Register() {
	observability.SetPlannerHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// =============================================================================
// Planner Hooks
// =============================================================================

func (m *Metrics) OnPlanStart(_ context.Context, _ string, _, _ int) {
	m.PlansInProgress.Inc()
}

func (m *Metrics) OnPlanComplete(_ context.Context, direction string, nodes int, d time.Duration, degraded bool) {
	m.PlansInProgress.Dec()
	m.PlansTotal.WithLabelValues(direction, strconv.FormatBool(degraded)).Inc()
	m.PlanDuration.WithLabelValues(direction).Observe(d.Seconds())
	m.PlanNodes.Observe(float64(nodes))
}

func (m *Metrics) OnEngineFailure(context.Context, error) {
	m.EngineFailures.Inc()
}

func (m *Metrics) OnConflict(_ context.Context, reason string) {
	m.ConflictsTotal.WithLabelValues(reason).Inc()
}

// =============================================================================
// Cache Hooks
// =============================================================================

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheHits.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheMisses.WithLabelValues(keyType).Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

// =============================================================================
// HTTP Hooks
// =============================================================================

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.HTTPRequestsInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.HTTPErrorsTotal.WithLabelValues(method, route).Inc()
}

var (
	_ observability.PlannerHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
