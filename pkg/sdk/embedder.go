package indicbot

import (
	"context"

	"github.com/indicbot/indicbot/internal/domain"
)

// Embedder converts text to vector embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Translator converts text between language codes. Implementations return the
// input unchanged when they cannot translate.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// embedderAdapter bridges the public Embedder to the domain contract.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // caller's own error
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}
