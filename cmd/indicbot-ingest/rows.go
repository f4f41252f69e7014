package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/indicbot/indicbot/internal/domain/record"
)

// maxLineBytes bounds a single NDJSON line.
const maxLineBytes = 4 << 20

type fileRow struct {
	ID            string   `json:"id"`
	Query         string   `json:"query"`
	Language      string   `json:"language"`
	Title         string   `json:"title"`
	RelevantCases []string `json:"relevant_cases"`
}

// readRows parses newline-delimited JSON rows. Blank lines are ignored;
// rows without a query are kept and skipped later by the ingest service.
func readRows(r io.Reader) ([]record.Row, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		rows []record.Row
		line int
	)
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var fr fileRow
		if err := json.Unmarshal(raw, &fr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, record.Row{
			ID:            fr.ID,
			Query:         fr.Query,
			Language:      fr.Language,
			Title:         fr.Title,
			RelevantCases: fr.RelevantCases,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}
