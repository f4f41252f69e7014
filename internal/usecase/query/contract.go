package query

import (
	"context"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/match"
)

// VectorSearcher finds the nearest stored records for a vector.
type VectorSearcher interface {
	Configured() bool
	Query(ctx context.Context, vec []float32, topK int) ([]match.Match, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Translator converts text between languages on a best-effort basis.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}
