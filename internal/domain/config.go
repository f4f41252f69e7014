package domain

// KeyPrefix namespaces every key the service writes to the cache.
const KeyPrefix = "indicbot:"

// Embedding defaults for the hosted sentence-transformers model.
const (
	DefaultEmbeddingModel      = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultEmbeddingDimensions = 384
)

// DefaultIndexName is the vector index used when none is configured.
const DefaultIndexName = "legal-documents"
