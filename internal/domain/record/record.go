// Package record models ingest rows and the vector records built from them.
package record

import (
	"strings"

	"github.com/google/uuid"

	"github.com/indicbot/indicbot/internal/domain/language"
)

// TitleRunes is the length of the title derived from a query.
const TitleRunes = 64

// Row is one document submitted for ingestion.
type Row struct {
	ID            string
	Query         string
	Language      string
	Title         string
	RelevantCases []string
}

// Valid reports whether the row carries query text.
func (r Row) Valid() bool {
	return strings.TrimSpace(r.Query) != ""
}

// Normalize fills defaults: a random id, the resolved language and a title cut
// from the query. It must only be called on valid rows.
func (r Row) Normalize() Row {
	out := r
	out.Query = strings.TrimSpace(r.Query)
	if strings.TrimSpace(out.ID) == "" {
		out.ID = uuid.NewString()
	}
	lang := r.Language
	if strings.TrimSpace(lang) == "" {
		lang = language.Auto
	}
	out.Language = language.Resolve(lang, out.Query)
	if out.Language == language.Auto {
		out.Language = language.English
	}
	if strings.TrimSpace(out.Title) == "" {
		out.Title = truncateRunes(out.Query, TitleRunes)
	}
	if out.RelevantCases == nil {
		out.RelevantCases = []string{}
	}
	return out
}

// Record is a vector with the metadata stored alongside it.
type Record struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

// Metadata is the stored payload of a record.
type Metadata struct {
	Language      string
	Query         string
	Translated    string
	RelevantCases []string
	Title         string
}

// New builds a record from a normalized row, its English translation and embedding.
func New(row Row, translated string, values []float32) Record {
	return Record{
		ID:     row.ID,
		Values: values,
		Metadata: Metadata{
			Language:      row.Language,
			Query:         row.Query,
			Translated:    translated,
			RelevantCases: row.RelevantCases,
			Title:         row.Title,
		},
	}
}

// Map renders metadata as the flat key/value bag the vector store keeps.
func (m Metadata) Map() map[string]any {
	cases := m.RelevantCases
	if cases == nil {
		cases = []string{}
	}
	return map[string]any{
		"language":       m.Language,
		"query":          m.Query,
		"translated":     m.Translated,
		"relevant_cases": cases,
		"title":          m.Title,
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
