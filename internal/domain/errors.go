package domain

import "errors"

var (
	// ErrInvalidRequest signals a malformed or incomplete client request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmptyQuery signals a missing or blank query string.
	ErrEmptyQuery = errors.New("missing 'query' string")
	// ErrNoRows signals an ingest payload without rows.
	ErrNoRows = errors.New("provide rows: [...] payload")
	// ErrNoValidRows signals an ingest payload where every row was skipped.
	ErrNoValidRows = errors.New("no valid rows to ingest")

	// ErrStoreNotConfigured signals that the vector store has no credentials.
	ErrStoreNotConfigured = errors.New("pinecone not configured")
	// ErrVectorStore signals a vector store failure.
	ErrVectorStore = errors.New("vector store error")

	// ErrEmbedderNotConfigured signals a missing embedding provider token.
	ErrEmbedderNotConfigured = errors.New("embedding provider not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmptyEmbedding signals that the provider returned no usable vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
)
