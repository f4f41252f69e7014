package health

import (
	"context"
	"time"
)

// Status is the liveness status. The process answering at all means "ok".
const Status = "ok"

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotConfigured indicates a component without credentials.
	CheckNotConfigured CheckResult = "not_configured"
)

// Report aggregates health check results.
type Report struct {
	Status   string
	Pinecone bool
	Index    string
	Checks   map[string]CheckResult
}

// Degraded reports whether any component check failed.
func (r Report) Degraded() bool {
	for _, v := range r.Checks {
		if v != CheckOK {
			return true
		}
	}
	return false
}

// Service coordinates health checks.
type Service struct {
	store     VectorStore
	embedding EmbeddingChecker
	cache     CachePinger
	timeout   time.Duration
}

// New creates a Service. embedding can be nil.
func New(store VectorStore, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding, timeout: DefaultCheckTimeout}
}

// WithTimeout sets the per-component check timeout. Non-positive values are ignored.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithCache adds the response cache to the checks.
func (s *Service) WithCache(cache CachePinger) *Service {
	s.cache = cache
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.store.Configured() {
		checks["vector_store"] = s.run(ctx, s.store.Ping)
	} else {
		checks["vector_store"] = CheckNotConfigured
	}

	if s.embedding != nil {
		checks["embedding"] = s.run(ctx, s.embedding.HealthCheck)
	}
	if s.cache != nil {
		checks["cache"] = s.run(ctx, s.cache.Ping)
	}

	return Report{
		Status:   Status,
		Pinecone: s.store.Configured(),
		Index:    s.store.IndexName(),
		Checks:   checks,
	}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := check(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
