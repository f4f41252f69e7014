// Package transcache is a lookaside cache in front of a Translator.
package transcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/db"
	"github.com/indicbot/indicbot/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "tr:"

// store is the consumer interface for the translation cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedTranslator caches successful translations.
type CachedTranslator struct {
	inner   domain.Translator
	store   store
	ttl     time.Duration
	results *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates a caching decorator.
// results is the translation counter vec (label "result"); hits are counted as "cached".
func New(
	inner domain.Translator,
	s store,
	ttl time.Duration,
	results *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedTranslator {
	return &CachedTranslator{
		inner:   inner,
		store:   s,
		ttl:     ttl,
		results: results,
		logger:  logger,
	}
}

// Translate returns a cached translation or delegates to the inner translator.
// Outputs equal to the input are not cached: they are indistinguishable from a fallback.
func (c *CachedTranslator) Translate(ctx context.Context, text, source, target string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || source == target {
		return c.inner.Translate(ctx, text, source, target)
	}

	key := cacheKey(trimmed, source, target)
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil && len(data) > 0:
		if c.results != nil {
			c.results.WithLabelValues("cached").Inc()
		}
		return string(data)
	case err != nil && !errors.Is(err, db.ErrKeyNotFound):
		c.logger.Warn("Failed to get cached translation", zap.String("key", key), zap.Error(err))
	}

	out := c.inner.Translate(ctx, text, source, target)
	if out == "" || out == trimmed {
		return out
	}
	if err := c.store.SetWithTTL(ctx, key, []byte(out), c.ttl); err != nil {
		c.logger.Warn("Failed to cache translation", zap.String("key", key), zap.Error(err))
	}
	return out
}

func cacheKey(text, source, target string) string {
	h := sha256.Sum256([]byte(source + "|" + target + "|" + text))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}
