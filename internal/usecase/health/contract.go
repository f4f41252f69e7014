package health

import "context"

// VectorStore reports vector index configuration and reachability.
type VectorStore interface {
	Configured() bool
	IndexName() string
	Ping(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
