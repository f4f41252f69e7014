// Package query holds the validated search request and the pipeline result.
package query

import (
	"strings"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/language"
	"github.com/indicbot/indicbot/internal/domain/match"
)

// Request limits.
const (
	DefaultTopK = 3
	MaxTopK     = 100
)

// Request is a validated search query.
type Request struct {
	text     string
	language string
	topK     int
}

// New trims and validates the query text, resolves the language hint and
// clamps topK. An empty language means the caller gave none.
func New(text, lang string, topK int) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return Request{
		text:     text,
		language: language.Resolve(lang, text),
		topK:     topK,
	}, nil
}

// Text returns the trimmed query text.
func (r Request) Text() string { return r.text }

// Language returns the resolved language, or "" when none was given.
func (r Request) Language() string { return r.language }

// TopK returns the number of matches to retrieve.
func (r Request) TopK() int { return r.topK }

// SourceLanguage is the language the query text is written in.
func (r Request) SourceLanguage() string {
	if r.language == "" {
		return language.English
	}
	return r.language
}

// TargetLanguage is the language the top result is rendered in.
// Requests without a language get Hindi.
func (r Request) TargetLanguage() string {
	if r.language == "" {
		return language.Hindi
	}
	return r.language
}

// TopResult is the best match rendered in English and the target language.
type TopResult struct {
	Language       string
	TitleEnglish   string
	TitleNative    string
	SnippetEnglish string
	SnippetNative  string
}

// Result is the outcome of a search.
type Result struct {
	TranslatedQuery string
	Matches         []match.Match
	EnglishSummary  string
	NativeSummary   string
	SourceLanguage  string
	// TopResult is nil when nothing matched.
	TopResult *TopResult
}
