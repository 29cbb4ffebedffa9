package apiserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics adapted from the teacher's internal/api/observability.go, with
// bounded cardinality (no per-tank labels) and renamed to tank-arena
// concerns. Exposed on /metrics in the main router rather than a separate
// debug listener - this server has no admin panel to isolate pprof from.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_tick_duration_seconds",
		Help:    "Time spent in one arena tick",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	tankCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arena_tank_count",
		Help: "Current number of tanks per arena",
	}, []string{"arena"})

	shapeCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arena_shape_count",
		Help: "Current number of shapes per arena",
	}, []string{"arena"})

	bulletCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arena_bullet_count",
		Help: "Current number of bullets per arena",
	}, []string{"arena"})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "HTTP requests rejected by the per-IP rate limiter",
	}, []string{"reason"}) // bounded: only "rate_limit" is recorded

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket connections",
	})
)

// RecordTick records one arena tick's wall-clock duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateArenaCounts sets the per-arena entity gauges.
func UpdateArenaCounts(arena string, tanks, shapes, bullets int) {
	tankCount.WithLabelValues(arena).Set(float64(tanks))
	shapeCount.WithLabelValues(arena).Set(float64(shapes))
	bulletCount.WithLabelValues(arena).Set(float64(bullets))
}

func recordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// RecordRequest records HTTP request metrics.
func RecordRequest(method, endpoint string, status int, duration time.Duration) {
	requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	requestTotal.WithLabelValues(method, endpoint, http.StatusText(status)).Inc()
}

// UpdateWSConnections sets the active-connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// metricsHandler exposes the registered collectors.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}
