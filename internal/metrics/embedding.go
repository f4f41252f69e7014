package metrics

import "github.com/prometheus/client_golang/prometheus"

// upstreamBuckets cover hosted inference and translation round trips,
// including Hugging Face cold starts.
var upstreamBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20}

// Embedding metrics, labelled by provider (huggingface, openai) and model.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Subsystem: "embedding",
			Name:      "requests_total",
			Help:      "Sentence embedding calls to the hosted model by outcome",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "indicbot",
			Subsystem: "embedding",
			Name:      "request_duration_seconds",
			Help:      "Round trip of successful embedding calls",
			Buckets:   upstreamBuckets,
		},
		[]string{"provider", "model"},
	)

	// EmbeddingTokensTotal is only fed by OpenAI-compatible endpoints; Hugging Face reports no usage.
	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Subsystem: "embedding",
			Name:      "tokens_total",
			Help:      "Tokens billed by OpenAI-compatible embedding endpoints",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Subsystem: "embedding",
			Name:      "errors_total",
			Help:      "Failed embedding calls by kind (api_error, bad_response, empty_response)",
		},
		[]string{"provider", "model", "kind"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "indicbot",
			Subsystem: "embedding",
			Name:      "cache_lookups_total",
			Help:      "Redis lookups for query and row embeddings",
		},
		[]string{"result"}, // hit / miss
	)
)

var embMetricsRegistered bool

// RegisterEmbeddingMetrics registers the embedding metrics. Must be called once from main.
func RegisterEmbeddingMetrics() {
	if embMetricsRegistered {
		return
	}
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingCacheTotal,
	)
	embMetricsRegistered = true
}
