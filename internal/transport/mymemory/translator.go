// Package mymemory translates text with the public MyMemory API.
package mymemory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/indicbot/indicbot/internal/metrics"
)

// Defaults.
const (
	DefaultBaseURL = "https://api.mymemory.translated.net"
	// DefaultTimeout bounds a single translation round trip.
	DefaultTimeout = 10 * time.Second
)

// Config holds the MyMemory settings.
type Config struct {
	BaseURL string
	Email   string // optional "de" parameter, raises the daily quota
	Timeout time.Duration
	// RateLimit is requests per second; 0 disables client-side limiting.
	RateLimit float64
	Burst     int
	Logger    *zap.Logger
}

// Translator implements domain.Translator. It never returns an error:
// any failure yields the trimmed input.
type Translator struct {
	baseURL string
	email   string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTranslator creates a MyMemory translator.
func NewTranslator(cfg Config) *Translator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   cfg.Email,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Translate converts text from source to target. Empty text yields "";
// equal languages yield the trimmed text; an empty source means "auto".
func (t *Translator) Translate(ctx context.Context, text, source, target string) string {
	q := strings.TrimSpace(text)
	if q == "" {
		return ""
	}
	if source == target {
		metrics.TranslationRequestsTotal.WithLabelValues("identity").Inc()
		return q
	}
	if source == "" {
		source = "auto"
	}

	out, err := t.fetch(ctx, q, source, target)
	if err != nil {
		metrics.TranslationRequestsTotal.WithLabelValues("fallback").Inc()
		t.logger.Warn("Translation fallback",
			zap.String("langpair", source+"|"+target),
			zap.Error(err),
		)
		return q
	}
	metrics.TranslationRequestsTotal.WithLabelValues("ok").Inc()
	return out
}

type response struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus  json.RawMessage `json:"responseStatus"`
	ResponseDetails string          `json:"responseDetails"`
}

var errEmptyTranslation = errors.New("empty translation")

func (t *Translator) fetch(ctx context.Context, q, source, target string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("langpair", source+"|"+target)
	if t.email != "" {
		params.Set("de", t.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/get?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	metrics.TranslationRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if status := parseStatus(body.ResponseStatus); status != 0 && status != http.StatusOK {
		return "", fmt.Errorf("api status %d: %s", status, body.ResponseDetails)
	}
	if body.ResponseData.TranslatedText == "" {
		return "", errEmptyTranslation
	}
	return body.ResponseData.TranslatedText, nil
}

// parseStatus reads responseStatus, which the API sends as a number or a string.
func parseStatus(raw json.RawMessage) int {
	s := strings.Trim(string(raw), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
