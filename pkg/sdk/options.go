package indicbot

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	pineconeKey   string
	indexName     string
	indexHost     string
	namespace     string
	controllerURL string

	hfToken   string
	hfModel   string
	hfBaseURL string
	embedder  Embedder

	translator      Translator
	myMemoryEmail   string
	myMemoryBaseURL string

	cacheAddr     string
	cachePassword string

	batchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithPinecone sets the Pinecone API key and index name.
func WithPinecone(apiKey, indexName string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pineconeKey = apiKey
		if indexName != "" {
			c.indexName = indexName
		}
	})
}

// WithIndexHost skips the control plane lookup of the index host.
func WithIndexHost(host string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexHost = host
	})
}

// WithNamespace scopes queries and upserts to a Pinecone namespace.
func WithNamespace(ns string) Option {
	return optionFunc(func(c *clientConfig) {
		c.namespace = ns
	})
}

// WithControllerURL overrides the Pinecone control plane address.
func WithControllerURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.controllerURL = url
	})
}

// WithHuggingFace embeds with the Hugging Face Inference API.
// An empty model selects sentence-transformers/all-MiniLM-L6-v2.
func WithHuggingFace(token, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.hfToken = token
		if model != "" {
			c.hfModel = model
		}
	})
}

// WithHuggingFaceURL overrides the Hugging Face inference base URL.
func WithHuggingFaceURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.hfBaseURL = baseURL
	})
}

// WithEmbedder replaces the Hugging Face embedder. Vectors should be L2-normalized.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithTranslator replaces the MyMemory translator.
func WithTranslator(t Translator) Option {
	return optionFunc(func(c *clientConfig) {
		c.translator = t
	})
}

// WithMyMemory configures the default translator. email raises the daily quota.
func WithMyMemory(baseURL, email string) Option {
	return optionFunc(func(c *clientConfig) {
		c.myMemoryBaseURL = baseURL
		c.myMemoryEmail = email
	})
}

// WithRedisCache caches embeddings and translations in Redis.
func WithRedisCache(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddr = addr
		c.cachePassword = password
	})
}

// WithIngestBatchSize splits Ingest into upserts of at most size records.
// Default: 0, a single upsert.
func WithIngestBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = size
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
