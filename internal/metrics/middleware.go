package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests no route answered (404, 405, preflight).
const unmatchedRoute = "unmatched"

// API request metrics. A query fans out to the translator, embedder and index,
// so buckets reach well past the single-upstream range.
var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route, method and response code",
		},
		[]string{"route", "method", "code"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indicbot",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Time to answer an API request, including upstream calls",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"route", "method"},
	)

	apiRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "indicbot",
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "API requests currently being served",
		},
	)
)

var httpMetricsRegistered bool

// RegisterHTTPMetrics registers the API request metrics. Must be called once from main.
func RegisterHTTPMetrics() {
	if httpMetricsRegistered {
		return
	}
	prometheus.MustRegister(apiRequestsTotal, apiRequestDuration, apiRequestsInFlight)
	httpMetricsRegistered = true
}

// Middleware records API request counts, latency and concurrency by chi route pattern.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiRequestsInFlight.Inc()
			defer apiRequestsInFlight.Dec()

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			apiRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			apiRequestsTotal.WithLabelValues(route, r.Method, statusCode(ww.Status())).Inc()
		})
	}
}

// routeLabel keeps label cardinality bounded to the registered routes.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// statusCode treats a handler that never wrote a header as 200.
func statusCode(status int) string {
	if status == 0 {
		status = http.StatusOK
	}
	return strconv.Itoa(status)
}
