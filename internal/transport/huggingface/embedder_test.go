package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/vector"
	"github.com/indicbot/indicbot/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

func newEmbedder(url, token string) *Embedder {
	return NewEmbedder(Config{Token: token, BaseURL: url, Logger: zap.NewNop()})
}

func TestEmbed_TokenMatrix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/models/sentence-transformers/all-MiniLM-L6-v2/pipeline/feature-extraction" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer hf-token" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		if err := json.Unmarshal(body, &req); err != nil || req["inputs"] != "bail conditions" {
			t.Errorf("unexpected body: %s", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[1, 2], [3, 6]]`))
	}))
	defer server.Close()

	result, err := newEmbedder(server.URL, "hf-token").Embed(context.Background(), "  bail conditions ")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	// mean [2, 4] normalized
	want := []float32{float32(2 / math.Sqrt(20)), float32(4 / math.Sqrt(20))}
	for i := range want {
		if math.Abs(float64(result.Embedding[i]-want[i])) > 1e-6 {
			t.Fatalf("Embedding = %v, want %v", result.Embedding, want)
		}
	}
}

func TestEmbed_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		dim  int
	}{
		{"pooled vector", `[0.5, 0.5, 0.5, 0.5]`, 4},
		{"token matrix", `[[0.1, 0.2, 0.3], [0.3, 0.2, 0.1]]`, 3},
		{"batched matrix", `[[[1, 0], [0, 1]]]`, 2},
		{"non-numeric entries", `[[1, "x"], [1, null]]`, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			result, err := newEmbedder(server.URL, "t").Embed(context.Background(), "text")
			if err != nil {
				t.Fatalf("Embed failed: %v", err)
			}
			if len(result.Embedding) != tc.dim {
				t.Fatalf("dim = %d, want %d", len(result.Embedding), tc.dim)
			}
			if n := vector.Norm(result.Embedding); math.Abs(n-1) > 1e-5 {
				t.Errorf("norm = %v, want 1", n)
			}
		})
	}
}

func TestEmbed_EmptyTextSkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	for _, text := range []string{"", "   "} {
		result, err := newEmbedder(server.URL, "t").Embed(context.Background(), text)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsEmpty() {
			t.Errorf("Embed(%q) = %v, want empty", text, result.Embedding)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("expected no upstream calls, got %d", calls.Load())
	}
}

func TestEmbed_MissingToken(t *testing.T) {
	e := newEmbedder("http://unused", "")
	_, err := e.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbedderNotConfigured) {
		t.Fatalf("expected ErrEmbedderNotConfigured, got %v", err)
	}
	if err := e.HealthCheck(context.Background()); !errors.Is(err, domain.ErrEmbedderNotConfigured) {
		t.Fatalf("HealthCheck: expected ErrEmbedderNotConfigured, got %v", err)
	}
}

func TestEmbed_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":20}`))
	}))
	defer server.Close()

	_, err := newEmbedder(server.URL, "t").Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "503") || !strings.Contains(got, "Model is currently loading") {
		t.Errorf("error message missing detail: %s", got)
	}
}

func TestEmbed_UnexpectedShape(t *testing.T) {
	for _, body := range []string{`{"embedding": [1]}`, `[]`, `[[]]`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))

		_, err := newEmbedder(server.URL, "t").Embed(context.Background(), "hello")
		server.Close()
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Errorf("body %s: expected ErrEmbeddingProviderError, got %v", body, err)
		}
	}
}

func TestHealthCheck_Configured(t *testing.T) {
	if err := newEmbedder("http://unused", "t").HealthCheck(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
