// Package metrics provides Prometheus instrumentation for shopfront.
//
// Wire it up once in internal/kernel/http.go:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopfront"

// DefaultRegistry is the registry exposed on /metrics.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
	MustRegister(c)
	return c
}

func histogram(subsystem, name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	}, labels)
	MustRegister(h)
	return h
}

// HTTP series are labelled by the chi route pattern, not the raw path, so
// /api/products/{id} is one series.
var (
	RequestDuration = histogram("http", "request_duration_seconds", "Duration of HTTP requests in seconds.",
		prometheus.DefBuckets, "method", "route", "status")
	RequestTotal = counter("http", "requests_total", "Total number of HTTP requests.",
		"method", "route", "status")
	ResponseSize = histogram("http", "response_size_bytes", "Response body sizes in bytes.",
		[]float64{100, 1_000, 10_000, 100_000, 1_000_000}, "method", "route")
	RequestInFlight = func() prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		})
		MustRegister(g)
		return g
	}()
)

// Storage.
var (
	DBQueryDuration = histogram("db", "query_duration_seconds", "Duration of database operations in seconds.",
		[]float64{.001, .005, .01, .025, .05, .1, .5, 1}, "collection", "operation")
	CacheHits   = counter("cache", "hits_total", "Total cache hits.", "driver")
	CacheMisses = counter("cache", "misses_total", "Total cache misses.", "driver")
)

// Orders, payments and notifications.
var (
	OrdersCreated = counter("orders", "created_total", "Orders created, by channel.", "channel")
	Payments      = counter("payments", "total", "Payment provider calls by operation and outcome.",
		"operation", "outcome")
	// WebhookEvents result is one of applied, duplicate, ignored, rejected or error.
	WebhookEvents = counter("payments", "webhook_events_total", "Webhook events by type and result.",
		"type", "result")
	Notifications = counter("notifications", "total", "Notification deliveries by channel and status.",
		"channel", "status")
	BreakerState = func() *prometheus.GaugeVec {
		g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "breaker", Name: "state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"name"})
		MustRegister(g)
		return g
	}()
)

type responseRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// Middleware records duration, count, in-flight and response size per route.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			route := routePattern(r)
			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, route, status).Inc()
			ResponseSize.WithLabelValues(r.Method, route).Observe(float64(rr.size))
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched" for 404s.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Handler exposes the registry in Prometheus text and OpenMetrics formats.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}

// ObserveDBQuery records a repository call duration:
//
//	defer metrics.ObserveDBQuery("orders", "find", time.Now())
func ObserveDBQuery(collection, operation string, start time.Time) {
	DBQueryDuration.WithLabelValues(collection, operation).Observe(time.Since(start).Seconds())
}
