// Package match models a ranked vector-store hit and its display metadata.
package match

import (
	"fmt"
	"sort"
	"strings"
)

// NoResults is the summary used when nothing matched.
const NoResults = "No results found."

// bodyKeys are tried in order to find the passage text of a hit.
var bodyKeys = []string{"data", "text", "body", "content", "translated", "query"}

// titleKeys are tried in order before falling back to the body.
var titleKeys = []string{"title", "case_title", "query"}

// summaryKeys are tried in order when rendering a summary line.
var summaryKeys = []string{"title", "translated", "query", "data", "text"}

// Match is a single vector-store hit with shaped metadata.
type Match struct {
	id       string
	score    float64
	metadata map[string]any
}

// New shapes raw metadata into a Match. Every raw key is kept; "title" and
// "snippet" are always present as strings.
func New(id string, score float64, raw map[string]any) Match {
	meta := make(map[string]any, len(raw)+2)
	for k, v := range raw {
		meta[k] = v
	}

	body := firstString(raw, bodyKeys)
	title := firstString(raw, titleKeys)
	if title == "" {
		title = body
	}
	meta["title"] = title
	meta["snippet"] = body

	return Match{id: id, score: score, metadata: meta}
}

// ID returns the vector identifier.
func (m Match) ID() string { return m.id }

// Score returns the similarity score.
func (m Match) Score() float64 { return m.score }

// Metadata returns the shaped metadata bag.
func (m Match) Metadata() map[string]any { return m.metadata }

// Title returns the display title.
func (m Match) Title() string { return String(m.metadata, "title") }

// Snippet returns the display passage.
func (m Match) Snippet() string { return String(m.metadata, "snippet") }

// Sort orders matches by descending score. Equal scores keep their input order.
func Sort(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].score > ms[j].score })
}

// Summary renders a numbered list of match labels, one per line.
func Summary(ms []Match) string {
	if len(ms) == 0 {
		return NoResults
	}
	lines := make([]string, len(ms))
	for i, m := range ms {
		text := firstString(m.metadata, summaryKeys)
		if text == "" {
			text = "Result"
		}
		lines[i] = fmt.Sprintf("%d. %s", i+1, text)
	}
	return strings.Join(lines, "\n")
}

// String returns meta[key] when it is a string, otherwise "".
func String(meta map[string]any, key string) string {
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

func firstString(meta map[string]any, keys []string) string {
	for _, k := range keys {
		if s := String(meta, k); s != "" {
			return s
		}
	}
	return ""
}
