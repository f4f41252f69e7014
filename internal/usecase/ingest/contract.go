package ingest

import (
	"context"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/record"
)

// VectorWriter stores records in the vector index.
type VectorWriter interface {
	Configured() bool
	Upsert(ctx context.Context, records []record.Record) (int, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Translator converts text between languages on a best-effort basis.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}
