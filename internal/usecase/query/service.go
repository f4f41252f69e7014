package query

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/match"
	domquery "github.com/indicbot/indicbot/internal/domain/query"
	"github.com/indicbot/indicbot/internal/logger"
)

// Service runs the multilingual search pipeline:
// translate, embed, search, rank, then render the best hit in the caller's language.
type Service struct {
	store     VectorSearcher
	embed     Embedder
	translate Translator
}

// New creates a query service.
func New(store VectorSearcher, embed Embedder, translate Translator) *Service {
	return &Service{store: store, embed: embed, translate: translate}
}

// Search executes the pipeline for a validated request.
// Translation problems never fail a search; embedding and store errors do.
func (s *Service) Search(ctx context.Context, req domquery.Request) (domquery.Result, error) {
	if !s.store.Configured() {
		return domquery.Result{}, domain.ErrStoreNotConfigured
	}

	source := req.SourceLanguage()
	english := domain.ToEnglish(ctx, s.translate, req.Text(), source)

	emb, err := s.embed.Embed(ctx, english)
	if err != nil {
		return domquery.Result{}, fmt.Errorf("embed query: %w", err)
	}
	if emb.IsEmpty() {
		return domquery.Result{}, fmt.Errorf("embed query: %w", domain.ErrEmptyEmbedding)
	}

	matches, err := s.store.Query(ctx, emb.Embedding, req.TopK())
	if err != nil {
		return domquery.Result{}, fmt.Errorf("query vector store: %w", err)
	}
	match.Sort(matches)

	summary := match.Summary(matches)
	result := domquery.Result{
		TranslatedQuery: english,
		Matches:         matches,
		EnglishSummary:  summary,
		SourceLanguage:  source,
	}

	target := req.TargetLanguage()
	if len(matches) == 0 {
		result.NativeSummary = domain.FromEnglish(ctx, s.translate, summary, target)
	} else {
		result.NativeSummary, result.TopResult = s.render(ctx, summary, matches[0], target)
	}

	logger.FromContext(ctx).Debug("Query served",
		zap.String("source_language", source),
		zap.String("target_language", target),
		zap.Int("top_k", req.TopK()),
		zap.Int("matches", len(matches)),
	)

	return result, nil
}

// render translates the summary and the best match concurrently.
func (s *Service) render(
	ctx context.Context, summary string, best match.Match, target string,
) (string, *domquery.TopResult) {
	top := &domquery.TopResult{
		Language:       target,
		TitleEnglish:   best.Title(),
		SnippetEnglish: best.Snippet(),
	}

	var (
		native string
		wg     sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		native = domain.FromEnglish(ctx, s.translate, summary, target)
	}()
	go func() {
		defer wg.Done()
		top.TitleNative = domain.FromEnglish(ctx, s.translate, top.TitleEnglish, target)
	}()
	go func() {
		defer wg.Done()
		top.SnippetNative = domain.FromEnglish(ctx, s.translate, top.SnippetEnglish, target)
	}()
	wg.Wait()

	return native, top
}
