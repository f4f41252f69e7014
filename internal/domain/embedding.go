package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// Implementations return L2-normalized vectors and an empty vector for empty text.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
// Hugging Face does not report usage, so token counts stay zero for that provider.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// IsEmpty reports whether the result carries no vector.
func (r EmbeddingResult) IsEmpty() bool { return len(r.Embedding) == 0 }
