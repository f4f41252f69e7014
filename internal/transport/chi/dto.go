package chi

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	domquery "github.com/indicbot/indicbot/internal/domain/query"
	"github.com/indicbot/indicbot/internal/domain/record"
)

type queryRequest struct {
	Query    json.RawMessage `json:"query"`
	Language string          `json:"language"`
	TopK     json.RawMessage `json:"topK"`
}

// toDomain accepts only a string query. topK may be a number or a numeric
// string; anything else falls back to the default.
func (q queryRequest) toDomain() (domquery.Request, error) {
	var text string
	if len(q.Query) > 0 {
		_ = json.Unmarshal(q.Query, &text)
	}
	return domquery.New(text, q.Language, parseTopK(q.TopK))
}

func parseTopK(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > float64(domquery.MaxTopK) {
		return domquery.MaxTopK
	}
	return int(f)
}

type ingestRequest struct {
	Rows []ingestRow `json:"rows"`
}

type ingestRow struct {
	ID            string   `json:"id"`
	Query         string   `json:"query"`
	Language      string   `json:"language"`
	Title         string   `json:"title"`
	RelevantCases []string `json:"relevant_cases"`
}

func (r ingestRequest) toDomain() []record.Row {
	rows := make([]record.Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = record.Row{
			ID:            row.ID,
			Query:         row.Query,
			Language:      row.Language,
			Title:         row.Title,
			RelevantCases: row.RelevantCases,
		}
	}
	return rows
}

type matchResponse struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

type topResultResponse struct {
	Language       string `json:"language"`
	TitleEnglish   string `json:"titleEnglish"`
	TitleNative    string `json:"titleNative"`
	SnippetEnglish string `json:"snippetEnglish"`
	SnippetNative  string `json:"snippetNative"`
}

type queryResponse struct {
	TranslatedQuery string             `json:"translatedQuery"`
	Matches         []matchResponse    `json:"matches"`
	EnglishSummary  string             `json:"englishSummary"`
	NativeSummary   string             `json:"nativeSummary"`
	SourceLanguage  string             `json:"sourceLanguage"`
	TopResult       *topResultResponse `json:"topResult"`
}

func queryResponseFromDomain(res domquery.Result) queryResponse {
	matches := make([]matchResponse, len(res.Matches))
	for i, m := range res.Matches {
		matches[i] = matchResponse{ID: m.ID(), Score: m.Score(), Metadata: m.Metadata()}
	}

	resp := queryResponse{
		TranslatedQuery: res.TranslatedQuery,
		Matches:         matches,
		EnglishSummary:  res.EnglishSummary,
		NativeSummary:   res.NativeSummary,
		SourceLanguage:  res.SourceLanguage,
	}
	if top := res.TopResult; top != nil {
		resp.TopResult = &topResultResponse{
			Language:       top.Language,
			TitleEnglish:   top.TitleEnglish,
			TitleNative:    top.TitleNative,
			SnippetEnglish: top.SnippetEnglish,
			SnippetNative:  top.SnippetNative,
		}
	}
	return resp
}

type ingestResponse struct {
	Status   string `json:"status"`
	Ingested int    `json:"ingested"`
	Skipped  int    `json:"skipped"`
}

type healthResponse struct {
	Status   string            `json:"status"`
	Pinecone bool              `json:"pinecone"`
	Index    string            `json:"index"`
	Checks   map[string]string `json:"checks"`
	Version  string            `json:"version"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
