// Package observability holds the Prometheus collectors of the render service.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var envLabel atomic.Value

func init() {
	envLabel.Store("development")
}

// SetEnv sets the runtime environment label attached to request metrics.
func SetEnv(s string) {
	if s == "" {
		s = "development"
	}
	envLabel.Store(s)
}

func getEnv() string {
	if v := envLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "development"
}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status", "env"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		},
		[]string{"method", "route", "status", "env"},
	)

	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maply_renders_total",
			Help: "Map renders by output part and result.",
		},
		[]string{"part", "result"},
	)

	renderDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "maply_render_duration_seconds",
			Help:    "Time spent building and rendering a map.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
		},
		[]string{"part"},
	)

	renderMarkers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "maply_render_markers",
			Help:    "Markers per rendered map.",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)

	renderCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maply_render_cache_total",
			Help: "Render cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	cacheOpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Remote cache operations by result.",
		},
		[]string{"op", "result"},
	)

	redisOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Latency of Redis operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"op"},
	)

	renderEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "maply_render_events_total",
			Help: "Render events handed to the publisher, by outcome.",
		},
		[]string{"outcome"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	e := getEnv()
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st, e).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st, e).Observe(durationSeconds)
}

// ObserveRender records one render of part ("page", "html", "js").
func ObserveRender(part string, err error, markers int, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	rendersTotal.WithLabelValues(part, result).Inc()
	if err == nil {
		renderDurationSeconds.WithLabelValues(part).Observe(durationSeconds)
		renderMarkers.Observe(float64(markers))
	}
}

func IncRenderCache(tier, outcome string) {
	renderCacheTotal.WithLabelValues(tier, outcome).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cacheOpTotal.WithLabelValues(op, result).Inc()
	redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func IncRenderEvent(outcome string) {
	renderEventsTotal.WithLabelValues(outcome).Inc()
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}

// Collectors returns the service collectors so a dedicated registry (see
// internal/metrics) can expose them next to the runtime collectors. The
// build info gauge is left out; the registry carries its own.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		rendersTotal,
		renderDurationSeconds,
		renderMarkers,
		renderCacheTotal,
		cacheOpTotal,
		redisOpDurationSeconds,
		renderEventsTotal,
	}
}
