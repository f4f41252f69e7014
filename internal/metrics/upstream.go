package metrics

import "github.com/prometheus/client_golang/prometheus"

// Translation and vector store Prometheus metrics.
var (
	TranslationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Name:      "translation_requests_total",
			Help:      "Translations by outcome",
		},
		[]string{"result"}, // ok / fallback / identity / cached
	)

	TranslationRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "indicbot",
			Name:      "translation_request_duration_seconds",
			Help:      "Translation API round trip in seconds",
			Buckets:   upstreamBuckets,
		},
	)

	VectorStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Name:      "vector_store_requests_total",
			Help:      "Vector store requests by operation and status",
		},
		[]string{"op", "status"},
	)

	VectorStoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indicbot",
			Name:      "vector_store_request_duration_seconds",
			Help:      "Vector store request duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"op"},
	)
)

var upstreamMetricsRegistered bool

// RegisterUpstreamMetrics registers translation and vector store metrics. Must be called once from main.
func RegisterUpstreamMetrics() {
	if upstreamMetricsRegistered {
		return
	}
	prometheus.MustRegister(TranslationRequestsTotal)
	prometheus.MustRegister(TranslationRequestDuration)
	prometheus.MustRegister(VectorStoreRequestsTotal)
	prometheus.MustRegister(VectorStoreRequestDuration)
	upstreamMetricsRegistered = true
}
