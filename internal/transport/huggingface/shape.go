package huggingface

import (
	"encoding/json"
	"errors"
)

var errUnexpectedShape = errors.New("unexpected feature-extraction shape")

// tokenMatrix accepts the three shapes the pipeline returns and yields token rows:
// a pooled vector [d], a token matrix [t][d], or a batch [b][t][d] (first item used).
// Non-numeric entries count as zero; non-array rows are dropped.
func tokenMatrix(raw json.RawMessage) ([][]float32, error) {
	var data []any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errUnexpectedShape
	}
	if len(data) == 0 {
		return nil, nil
	}

	first, nested := data[0].([]any)
	if !nested {
		return [][]float32{toFloats(data)}, nil
	}
	if len(first) > 0 {
		if _, batch := first[0].([]any); batch {
			return rows(first), nil
		}
	}
	return rows(data), nil
}

func rows(items []any) [][]float32 {
	out := make([][]float32, 0, len(items))
	for _, item := range items {
		row, ok := item.([]any)
		if !ok {
			continue
		}
		out = append(out, toFloats(row))
	}
	return out
}

func toFloats(items []any) []float32 {
	out := make([]float32, len(items))
	for i, v := range items {
		if f, ok := v.(float64); ok {
			out[i] = float32(f)
		}
	}
	return out
}
