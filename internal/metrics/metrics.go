package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Collectors are created eagerly so recording is always safe; Register wires
// them into the default registry once at startup. Tests record without
// registering.
var (
	// DislikesTotal counts counter-service operations by action.
	DislikesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dislinkd_dislikes_total",
			Help: "Total counter operations handled, by action.",
		},
		[]string{"action"},
	)

	// FallbackTotal counts remote-store failures that fell back to the
	// local store.
	FallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dislinkd_store_fallback_total",
			Help: "Total operations served by the local fallback store after a remote failure.",
		},
	)

	// RequestDuration observes counterd HTTP request latency.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dislinkd_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint, method and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestsInFlight gauges concurrently served counterd requests.
	RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dislinkd_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	// CacheHits / CacheMisses count redis lookups in the counter service.
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dislinkd_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dislinkd_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)
)

// Register installs all collectors into the default registry. Call once at
// startup. The pool may be nil when counterd runs on the memory store.
func Register(pool *pgxpool.Pool) {
	if pool != nil {
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dislinkd_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		))
		prometheus.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "dislinkd_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		))
	}

	prometheus.MustRegister(
		DislikesTotal,
		FallbackTotal,
		RequestDuration,
		RequestsInFlight,
		CacheHits,
		CacheMisses,
	)
}

// Middleware records request duration and in-flight count for Prometheus.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	if strings.HasPrefix(path, "/post_dislikes") {
		return "/post_dislikes"
	}
	return path
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
