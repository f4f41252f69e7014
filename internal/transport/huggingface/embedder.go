// Package huggingface embeds text with the Hugging Face Inference feature-extraction pipeline.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/vector"
	"github.com/indicbot/indicbot/internal/metrics"
)

const providerName = "huggingface"

// DefaultBaseURL is the Inference Providers router for hosted models.
const DefaultBaseURL = "https://router.huggingface.co/hf-inference"

// maxErrorBody bounds how much of an error response is read into messages.
const maxErrorBody = 4 << 10

// Config holds the Hugging Face embedding settings.
type Config struct {
	Token   string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Embedder calls the feature-extraction pipeline and pools token vectors into
// a single unit-length sentence vector.
type Embedder struct {
	token   string
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewEmbedder creates a Hugging Face embedder. A missing token is reported on first use.
func NewEmbedder(cfg Config) *Embedder {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = domain.DefaultEmbeddingModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{
		token:   cfg.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Embed implements domain.Embedder. Whitespace-only text yields an empty vector
// without an upstream call.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return domain.EmbeddingResult{}, nil
	}
	if e.token == "" {
		return domain.EmbeddingResult{}, fmt.Errorf("missing HF_API_TOKEN: %w", domain.ErrEmbedderNotConfigured)
	}

	start := time.Now()
	raw, err := e.featureExtraction(ctx, input)
	duration := time.Since(start)
	if err != nil {
		e.recordError("api_error")
		return domain.EmbeddingResult{}, err
	}

	tokens, err := tokenMatrix(raw)
	if err != nil {
		e.recordError("bad_response")
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	vec := vector.PoolAndNormalize(tokens)
	if len(vec) == 0 {
		e.recordError("empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("empty embeddings returned: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// HealthCheck reports whether the embedder can be used. It does not call the
// API: every inference call counts against the account quota.
func (e *Embedder) HealthCheck(_ context.Context) error {
	if e.token == "" {
		return domain.ErrEmbedderNotConfigured
	}
	return nil
}

func (e *Embedder) recordError(kind string) {
	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.model, kind).Inc()
}

func (e *Embedder) endpoint() string {
	return fmt.Sprintf("%s/models/%s/pipeline/feature-extraction", e.baseURL, (&url.URL{Path: e.model}).EscapedPath())
}

func (e *Embedder) featureExtraction(ctx context.Context, input string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{"inputs": input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("embedding API error %d: %s: %w",
			resp.StatusCode, errorMessage(detail), domain.ErrEmbeddingProviderError)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return raw, nil
}

// errorMessage extracts {"error": "..."} from an API error body.
func errorMessage(body []byte) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error != "" {
		return parsed.Error
	}
	return strings.TrimSpace(string(body))
}
