package indicbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/indicbot/indicbot/internal/db/redis"
	"github.com/indicbot/indicbot/internal/domain"
	domquery "github.com/indicbot/indicbot/internal/domain/query"
	"github.com/indicbot/indicbot/internal/domain/record"
	"github.com/indicbot/indicbot/internal/repository/embcache"
	"github.com/indicbot/indicbot/internal/repository/transcache"
	hfEmb "github.com/indicbot/indicbot/internal/transport/huggingface"
	"github.com/indicbot/indicbot/internal/transport/mymemory"
	"github.com/indicbot/indicbot/internal/transport/pinecone"
	healthuc "github.com/indicbot/indicbot/internal/usecase/health"
	ingestuc "github.com/indicbot/indicbot/internal/usecase/ingest"
	queryuc "github.com/indicbot/indicbot/internal/usecase/query"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCacheTTL         = 7 * 24 * time.Hour
)

// Internal interfaces, replaced in tests.
type searchUseCase interface {
	Search(ctx context.Context, req domquery.Request) (domquery.Result, error)
}

type ingestUseCase interface {
	Ingest(ctx context.Context, rows []record.Row) (ingestuc.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client runs queries and ingestion in-process.
type Client struct {
	store     *pinecone.Store
	cache     *dbRedis.Store
	searchSvc searchUseCase
	ingestSvc ingestUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. The context bounds the optional cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		indexName: domain.DefaultIndexName,
		hfModel:   domain.DefaultEmbeddingModel,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.pineconeKey == "" {
		return nil, errors.New("indicbot: pinecone api key required (use WithPinecone)")
	}
	if cfg.embedder == nil && cfg.hfToken == "" {
		return nil, errors.New("indicbot: embedder required (use WithHuggingFace or WithEmbedder)")
	}

	var cache *dbRedis.Store
	if cfg.cacheAddr != "" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.cacheAddr},
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("indicbot: create cache: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("indicbot: cache not ready: %w", err)
		}
		cache = s
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}
	return wireClient(cfg, pinecone.New(cfg.storeConfig()), cache, obs), nil
}

func (cfg *clientConfig) storeConfig() pinecone.Config {
	return pinecone.Config{
		APIKey:        cfg.pineconeKey,
		IndexName:     cfg.indexName,
		IndexHost:     cfg.indexHost,
		ControllerURL: cfg.controllerURL,
		Namespace:     cfg.namespace,
	}
}

func wireClient(cfg *clientConfig, store *pinecone.Store, cache *dbRedis.Store, obs *observer) *Client {
	log := zap.NewNop()

	var emb domain.Embedder
	var embHealth healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	} else {
		hf := hfEmb.NewEmbedder(hfEmb.Config{
			Token:   cfg.hfToken,
			BaseURL: cfg.hfBaseURL,
			Model:   cfg.hfModel,
			Logger:  log,
		})
		emb, embHealth = hf, hf
	}

	var tr domain.Translator = cfg.translator
	if tr == nil {
		tr = mymemory.NewTranslator(mymemory.Config{
			BaseURL: cfg.myMemoryBaseURL,
			Email:   cfg.myMemoryEmail,
			Logger:  log,
		})
	}

	healthSvc := healthuc.New(store, embHealth)
	if cache != nil {
		emb = embcache.New(emb, cache, defaultCacheTTL, nil, log)
		tr = transcache.New(tr, cache, defaultCacheTTL, nil, log)
		healthSvc.WithCache(cache)
	}

	return &Client{
		store:     store,
		cache:     cache,
		searchSvc: queryuc.New(store, emb, tr),
		ingestSvc: ingestuc.New(store, emb, tr).WithBatchSize(cfg.batchSize),
		healthSvc: healthSvc,
		obs:       obs,
	}
}

// Close releases the index and cache connections.
func (c *Client) Close() {
	if c.store != nil {
		_ = c.store.Close()
	}
	if c.cache != nil {
		c.cache.Close()
	}
}

// QueryOption tunes a single query.
type QueryOption func(*queryParams)

type queryParams struct {
	language string
	topK     int
}

// Language sets the query language code. "auto" detects it from the script.
func Language(code string) QueryOption {
	return func(p *queryParams) { p.language = code }
}

// TopK sets the number of matches. Default 3, capped at 100.
func TopK(n int) QueryOption {
	return func(p *queryParams) { p.topK = n }
}

// Query translates text to English, searches the index and renders the top result
// in the query language.
func (c *Client) Query(ctx context.Context, text string, opts ...QueryOption) (res QueryResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err) }()

	var p queryParams
	for _, o := range opts {
		o(&p)
	}

	req, err := domquery.New(text, p.language, p.topK)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	out, err := c.searchSvc.Search(ctx, req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	return queryResultFromDomain(out), nil
}

// Ingest translates, embeds and stores rows. Rows without Query are skipped.
func (c *Client) Ingest(ctx context.Context, rows []Row) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	in := make([]record.Row, len(rows))
	for i, r := range rows {
		in[i] = record.Row{
			ID:            r.ID,
			Query:         r.Query,
			Language:      r.Language,
			Title:         r.Title,
			RelevantCases: r.RelevantCases,
		}
	}

	out, err := c.ingestSvc.Ingest(ctx, in)
	res = IngestResult{Ingested: out.Ingested, Skipped: out.Skipped}
	if err != nil {
		return res, fmt.Errorf("ingest: %w", err)
	}
	return res, nil
}

// Health checks the vector store, embedder and cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status:   report.Status,
		Pinecone: report.Pinecone,
		Index:    report.Index,
		Checks:   checks,
	}
}

func queryResultFromDomain(r domquery.Result) QueryResult {
	matches := make([]Match, len(r.Matches))
	for i, m := range r.Matches {
		matches[i] = Match{
			ID:       m.ID(),
			Score:    m.Score(),
			Title:    m.Title(),
			Snippet:  m.Snippet(),
			Metadata: m.Metadata(),
		}
	}
	out := QueryResult{
		TranslatedQuery: r.TranslatedQuery,
		Matches:         matches,
		EnglishSummary:  r.EnglishSummary,
		NativeSummary:   r.NativeSummary,
		SourceLanguage:  r.SourceLanguage,
	}
	if t := r.TopResult; t != nil {
		out.TopResult = &TopResult{
			Language:       t.Language,
			TitleEnglish:   t.TitleEnglish,
			TitleNative:    t.TitleNative,
			SnippetEnglish: t.SnippetEnglish,
			SnippetNative:  t.SnippetNative,
		}
	}
	return out
}
