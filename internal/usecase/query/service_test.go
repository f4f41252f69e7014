package query

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/match"
	domquery "github.com/indicbot/indicbot/internal/domain/query"
)

// --- mocks ---

type mockStore struct {
	configured bool
	matches    []match.Match
	err        error
	gotTopK    int
	gotVec     []float32
}

func (m *mockStore) Configured() bool { return m.configured }

func (m *mockStore) Query(_ context.Context, vec []float32, topK int) ([]match.Match, error) {
	m.gotVec, m.gotTopK = vec, topK
	return m.matches, m.err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	got    string
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.got = text
	m.calls++
	return m.result, m.err
}

type call struct{ text, source, target string }

// dictTranslator answers from a fixed table and falls back to the input.
type dictTranslator struct {
	mu    sync.Mutex
	dict  map[string]string
	calls []call
}

func (d *dictTranslator) Translate(_ context.Context, text, source, target string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call{text, source, target})
	if out, ok := d.dict[source+"|"+target+"|"+text]; ok {
		return out
	}
	return strings.TrimSpace(text)
}

func (d *dictTranslator) targets() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, c := range d.calls {
		out = append(out, c.target)
	}
	return out
}

func newRequest(t *testing.T, text, lang string, topK int) domquery.Request {
	t.Helper()
	req, err := domquery.New(text, lang, topK)
	if err != nil {
		t.Fatalf("domquery.New: %v", err)
	}
	return req
}

func unitEmbedder() *mockEmbedder {
	return &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 0}}}
}

// --- tests ---

func TestSearch_HindiPipeline(t *testing.T) {
	store := &mockStore{configured: true, matches: []match.Match{
		match.New("low", 0.31, map[string]any{"title": "Tenancy", "data": "Rent Act"}),
		match.New("high", 0.87, map[string]any{"title": "Bail", "data": "Section 437 CrPC"}),
	}}
	emb := unitEmbedder()
	tr := &dictTranslator{dict: map[string]string{
		"hi|en|जमानत":            "bail",
		"en|hi|Bail":             "जमानत",
		"en|hi|Section 437 CrPC": "धारा 437",
	}}

	res, err := New(store, emb, tr).Search(context.Background(), newRequest(t, "जमानत", "hi", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.TranslatedQuery != "bail" || emb.got != "bail" {
		t.Errorf("expected English text to be embedded, got %q / %q", res.TranslatedQuery, emb.got)
	}
	if store.gotTopK != 5 {
		t.Errorf("topK = %d, want 5", store.gotTopK)
	}
	if res.SourceLanguage != "hi" {
		t.Errorf("SourceLanguage = %q", res.SourceLanguage)
	}
	if res.Matches[0].ID() != "high" || res.Matches[1].ID() != "low" {
		t.Errorf("matches not sorted: %s, %s", res.Matches[0].ID(), res.Matches[1].ID())
	}
	if res.EnglishSummary != "1. Bail\n2. Tenancy" {
		t.Errorf("EnglishSummary = %q", res.EnglishSummary)
	}
	if res.TopResult == nil {
		t.Fatal("expected top result")
	}
	want := domquery.TopResult{
		Language:       "hi",
		TitleEnglish:   "Bail",
		TitleNative:    "जमानत",
		SnippetEnglish: "Section 437 CrPC",
		SnippetNative:  "धारा 437",
	}
	if *res.TopResult != want {
		t.Errorf("TopResult = %+v, want %+v", *res.TopResult, want)
	}
}

func TestSearch_MatchesSortedDescending(t *testing.T) {
	scores := []float64{0.1, 0.9, 0.5, 0.7, 0.3}
	var ms []match.Match
	for i, sc := range scores {
		ms = append(ms, match.New(string(rune('a'+i)), sc, nil))
	}
	store := &mockStore{configured: true, matches: ms}

	res, err := New(store, unitEmbedder(), &dictTranslator{}).
		Search(context.Background(), newRequest(t, "q", "en", 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(res.Matches); i++ {
		if res.Matches[i-1].Score() < res.Matches[i].Score() {
			t.Fatalf("matches not descending at %d: %v < %v", i, res.Matches[i-1].Score(), res.Matches[i].Score())
		}
	}
}

func TestSearch_DefaultTargetIsHindi(t *testing.T) {
	store := &mockStore{configured: true, matches: []match.Match{
		match.New("a", 0.5, map[string]any{"title": "Bail"}),
	}}
	tr := &dictTranslator{}

	res, err := New(store, unitEmbedder(), tr).Search(context.Background(), newRequest(t, "bail", "", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SourceLanguage != "en" {
		t.Errorf("SourceLanguage = %q, want en", res.SourceLanguage)
	}
	if res.TopResult.Language != "hi" {
		t.Errorf("TopResult.Language = %q, want hi", res.TopResult.Language)
	}
	if store.gotTopK != domquery.DefaultTopK {
		t.Errorf("topK = %d, want %d", store.gotTopK, domquery.DefaultTopK)
	}
	hindi := 0
	for _, target := range tr.targets() {
		if target == "hi" {
			hindi++
		}
	}
	if hindi != 3 {
		t.Errorf("expected 3 translations into hi (summary, title, snippet), got %d", hindi)
	}
}

func TestSearch_TranslationFailureDoesNotAbort(t *testing.T) {
	store := &mockStore{configured: true, matches: []match.Match{
		match.New("a", 0.5, map[string]any{"query": "भूमि विवाद"}),
	}}
	emb := unitEmbedder()
	// empty dictionary: every translation falls back to its input
	tr := &dictTranslator{}

	res, err := New(store, emb, tr).Search(context.Background(), newRequest(t, " भूमि विवाद ", "hi", 3))
	if err != nil {
		t.Fatalf("translation fallback must not fail the request: %v", err)
	}
	if res.TranslatedQuery != "भूमि विवाद" || emb.got != "भूमि विवाद" {
		t.Errorf("expected original text to flow through, got %q", res.TranslatedQuery)
	}
	if res.TopResult == nil || res.TopResult.TitleNative != "भूमि विवाद" {
		t.Errorf("unexpected top result: %+v", res.TopResult)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	store := &mockStore{configured: true}
	tr := &dictTranslator{dict: map[string]string{"en|ta|No results found.": "முடிவுகள் இல்லை."}}

	res, err := New(store, unitEmbedder(), tr).Search(context.Background(), newRequest(t, "x", "ta", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TopResult != nil {
		t.Errorf("expected nil top result, got %+v", res.TopResult)
	}
	if res.EnglishSummary != match.NoResults {
		t.Errorf("EnglishSummary = %q", res.EnglishSummary)
	}
	if res.NativeSummary != "முடிவுகள் இல்லை." {
		t.Errorf("NativeSummary = %q", res.NativeSummary)
	}
	if len(res.Matches) != 0 {
		t.Errorf("expected no matches, got %d", len(res.Matches))
	}
}

func TestSearch_StoreNotConfigured(t *testing.T) {
	emb := unitEmbedder()
	_, err := New(&mockStore{}, emb, &dictTranslator{}).Search(context.Background(), newRequest(t, "q", "en", 3))
	if !errors.Is(err, domain.ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}
	if emb.calls != 0 {
		t.Error("embedder must not be called when the store is not configured")
	}
}

func TestSearch_EmbeddingError(t *testing.T) {
	emb := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	_, err := New(&mockStore{configured: true}, emb, &dictTranslator{}).
		Search(context.Background(), newRequest(t, "q", "en", 3))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestSearch_EmptyEmbedding(t *testing.T) {
	_, err := New(&mockStore{configured: true}, &mockEmbedder{}, &dictTranslator{}).
		Search(context.Background(), newRequest(t, "q", "en", 3))
	if !errors.Is(err, domain.ErrEmptyEmbedding) {
		t.Fatalf("expected ErrEmptyEmbedding, got %v", err)
	}
}

func TestSearch_StoreError(t *testing.T) {
	store := &mockStore{configured: true, err: errors.New("503: vector store error")}
	_, err := New(store, unitEmbedder(), &dictTranslator{}).
		Search(context.Background(), newRequest(t, "q", "en", 3))
	if err == nil {
		t.Fatal("expected store error")
	}
}

// barrierTranslator blocks each en->target call until all expected calls are in flight.
type barrierTranslator struct {
	mu      sync.Mutex
	want    int
	arrived int
	release chan struct{}
}

func (b *barrierTranslator) Translate(_ context.Context, text, source, _ string) string {
	if source != "en" {
		return text
	}
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.want {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return "native:" + text
	case <-time.After(2 * time.Second):
		return "timeout"
	}
}

func TestSearch_TopResultTranslationsRunConcurrently(t *testing.T) {
	store := &mockStore{configured: true, matches: []match.Match{
		match.New("a", 0.5, map[string]any{"title": "T", "data": "S"}),
	}}
	tr := &barrierTranslator{want: 3, release: make(chan struct{})}

	res, err := New(store, unitEmbedder(), tr).Search(context.Background(), newRequest(t, "q", "hi", 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TopResult.TitleNative != "native:T" || res.TopResult.SnippetNative != "native:S" {
		t.Errorf("translations did not overlap: %+v", res.TopResult)
	}
	if res.NativeSummary != "native:1. T" {
		t.Errorf("NativeSummary = %q", res.NativeSummary)
	}
}

func TestSearch_TranslationCallsPerQuery(t *testing.T) {
	store := &mockStore{configured: true, matches: []match.Match{
		match.New("a", 0.9, map[string]any{"title": "Bail", "data": "Section 437 CrPC"}),
		match.New("b", 0.4, map[string]any{"title": "Tenancy"}),
	}}
	tr := &dictTranslator{}

	if _, err := New(store, unitEmbedder(), tr).Search(context.Background(), newRequest(t, "जमानत", "hi", 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var toEnglish, toNative int
	for _, target := range tr.targets() {
		switch target {
		case "en":
			toEnglish++
		case "hi":
			toNative++
		}
	}
	// One call for the query, then summary, title and snippet of the best match.
	if toEnglish != 1 || toNative != 3 {
		t.Errorf("translations: %d to English, %d to Hindi; want 1 and 3", toEnglish, toNative)
	}
}
