package indicbot

import "github.com/indicbot/indicbot/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuery             = domain.ErrEmptyQuery
	ErrNoRows                 = domain.ErrNoRows
	ErrNoValidRows            = domain.ErrNoValidRows
	ErrStoreNotConfigured     = domain.ErrStoreNotConfigured
	ErrVectorStore            = domain.ErrVectorStore
	ErrEmbedderNotConfigured  = domain.ErrEmbedderNotConfigured
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmptyEmbedding         = domain.ErrEmptyEmbedding
)
