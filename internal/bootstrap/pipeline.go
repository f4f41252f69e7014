// Package bootstrap assembles the upstream adapters shared by the binaries.
package bootstrap

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/config"
	dbRedis "github.com/indicbot/indicbot/internal/db/redis"
	"github.com/indicbot/indicbot/internal/domain"
	logpkg "github.com/indicbot/indicbot/internal/logger"
	"github.com/indicbot/indicbot/internal/metrics"
	"github.com/indicbot/indicbot/internal/repository/embcache"
	"github.com/indicbot/indicbot/internal/repository/transcache"
	hfEmb "github.com/indicbot/indicbot/internal/transport/huggingface"
	"github.com/indicbot/indicbot/internal/transport/mymemory"
	openaiEmb "github.com/indicbot/indicbot/internal/transport/openai"
	"github.com/indicbot/indicbot/internal/transport/pinecone"
	embeddinguc "github.com/indicbot/indicbot/internal/usecase/embedding"
)

// Pipeline holds the decorated upstream clients.
type Pipeline struct {
	Store      *pinecone.Store
	Embedder   domain.Embedder
	Translator domain.Translator
	// EmbeddingHealth checks the provider, bypassing the cache.
	EmbeddingHealth domain.HealthChecker
	// Cache is nil when caching is disabled or Redis was unreachable at startup.
	Cache *dbRedis.Store
}

// BuildPipeline wires the vector store, embedder and translator from config.
// The cache is optional: connection failures are logged and the pipeline runs without it.
func BuildPipeline(ctx context.Context, cfg config.Config, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		Store: pinecone.New(pinecone.Config{
			APIKey:        cfg.Pinecone.APIKey,
			IndexName:     cfg.Pinecone.IndexName,
			IndexHost:     cfg.Pinecone.IndexHost,
			ControllerURL: cfg.Pinecone.ControllerURL,
			Namespace:     cfg.Pinecone.Namespace,
			Timeout:       time.Duration(cfg.Pinecone.TimeoutSec) * time.Second,
			Logger:        logger,
		}),
	}
	if !p.Store.Configured() {
		logger.Warn("Pinecone API key not set; query and ingest will fail",
			zap.String("index", cfg.Pinecone.IndexName))
	}

	p.Cache = openCache(ctx, cfg.Cache, logger)

	base := buildEmbedder(cfg.Embedding, logger)
	instrumented := embeddinguc.NewInstrumentedEmbedder(base, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
	p.EmbeddingHealth = instrumented
	p.Embedder = instrumented

	var translator domain.Translator = mymemory.NewTranslator(mymemory.Config{
		BaseURL:   cfg.Translation.BaseURL,
		Email:     cfg.Translation.Email,
		Timeout:   time.Duration(cfg.Translation.TimeoutSec) * time.Second,
		RateLimit: cfg.Translation.RateLimitRPS,
		Burst:     cfg.Translation.RateBurst,
		Logger:    logger,
	})

	if p.Cache != nil {
		ttl := time.Duration(cfg.Cache.TTLSec) * time.Second
		p.Embedder = embcache.New(instrumented, p.Cache, ttl, metrics.EmbeddingCacheTotal, logger)
		translator = transcache.New(translator, p.Cache, ttl, metrics.TranslationRequestsTotal, logger)
	}
	p.Translator = translator

	logger.Info("Pipeline ready",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("index", cfg.Pinecone.IndexName),
		zap.Bool("pinecone", p.Store.Configured()),
		zap.Bool("cache", p.Cache != nil),
	)
	return p
}

// Close releases the index and cache connections.
func (p *Pipeline) Close() {
	if p.Store != nil {
		_ = p.Store.Close()
	}
	if p.Cache != nil {
		p.Cache.Close()
	}
}

func buildEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.Provider == "openai" {
		return openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			HTTPClient: &http.Client{Timeout: timeout},
			Logger:     logger,
		})
	}
	return hfEmb.NewEmbedder(hfEmb.Config{
		Token:   cfg.HuggingFace.Token,
		BaseURL: cfg.HuggingFace.BaseURL,
		Model:   cfg.Model,
		Timeout: timeout,
		Logger:  logger,
	})
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) *dbRedis.Store {
	if !cfg.Enabled() {
		return nil
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		logger.Warn("Cache unavailable, continuing without it", zap.Strings("addrs", cfg.Addrs), zap.Error(err))
		return nil
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		logger.Warn("Cache not ready, continuing without it", zap.Strings("addrs", cfg.Addrs), zap.Error(err))
		store.Close()
		return nil
	}
	logger.Info("Connected to cache", zap.Strings("addrs", cfg.Addrs))
	return store
}

// NewLogger builds the process logger and tees it into the configured log file.
func NewLogger(env string, cfg config.LoggingConfig) (*zap.Logger, error) {
	logger, err := logpkg.NewLogger(env, cfg.Level)
	if err != nil {
		return nil, err
	}
	return logpkg.WithFile(logger, logpkg.FileConfig{
		Path:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   true,
	}), nil
}
