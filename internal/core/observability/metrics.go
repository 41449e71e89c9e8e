package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_latency_seconds",
			Help:    "Latency of upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)
)

// domain collectors, registered by Init
var (
	redisOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Duration of Redis operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"op", "result"},
	)

	zoneCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zone_cache_results_total",
			Help: "Zone lookups by cache tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	wmsTilesEmitted = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wms_tiles_emitted",
			Help:    "Tiles emitted per overlay request.",
			Buckets: []float64{0, 1, 4, 9, 16, 25, 36, 49},
		},
	)

	invalidationEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invalidation_events_total",
			Help: "Zone invalidation events by op and result.",
		},
		[]string{"op", "result"},
	)
)

// Init registers the domain collectors with reg. It is safe to call more
// than once with the same registerer.
func Init(reg prometheus.Registerer, enabled bool) {
	if !enabled || reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{redisOpDuration, zoneCacheResults, wmsTilesEmitted, invalidationEvents} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

func ObserveUpstreamLatency(upstream string, durationSeconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(durationSeconds)
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	redisOpDuration.WithLabelValues(op, result).Observe(durationSeconds)
}

// IncZoneCache counts a lookup outcome ("hit", "miss", "error") for a tier
// ("lru", "redis", "backend").
func IncZoneCache(tier, outcome string) {
	zoneCacheResults.WithLabelValues(tier, outcome).Inc()
}

func ObserveTiles(n int) {
	wmsTilesEmitted.Observe(float64(n))
}

func IncInvalidation(op, result string) {
	invalidationEvents.WithLabelValues(op, result).Inc()
}
