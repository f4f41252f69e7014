package pinecone

import (
	"context"
	"fmt"

	pc "github.com/pinecone-io/go-pinecone/v5/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/indicbot/indicbot/internal/domain/match"
	"github.com/indicbot/indicbot/internal/domain/record"
)

// Stats summarizes the index contents.
type Stats struct {
	Dimension        int
	IndexFullness    float64
	TotalVectorCount int
}

// Query returns the topK nearest records with shaped metadata, in the order the index returned them.
func (s *Store) Query(ctx context.Context, vec []float32, topK int) ([]match.Match, error) {
	var resp *pc.QueryVectorsResponse
	err := s.call(ctx, "query", func(ctx context.Context, conn IndexConnection) error {
		var err error
		resp, err = conn.QueryByVectorValues(ctx, &pc.QueryByVectorValuesRequest{
			Vector:          vec,
			TopK:            uint32(max(topK, 0)),
			IncludeMetadata: true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]match.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		out = append(out, match.New(m.Vector.Id, float64(m.Score), m.Vector.Metadata.AsMap()))
	}
	return out, nil
}

// Upsert writes records and returns how many the index accepted.
func (s *Store) Upsert(ctx context.Context, records []record.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	vectors := make([]*pc.Vector, len(records))
	for i, r := range records {
		meta, err := structpb.NewStruct(structFields(r.Metadata.Map()))
		if err != nil {
			return 0, fmt.Errorf("metadata for %s: %w", r.ID, err)
		}
		values := r.Values
		vectors[i] = &pc.Vector{Id: r.ID, Values: &values, Metadata: meta}
	}

	var n uint32
	err := s.call(ctx, "upsert", func(ctx context.Context, conn IndexConnection) error {
		var err error
		n, err = conn.UpsertVectors(ctx, vectors)
		return err
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// Stats describes the index.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var resp *pc.DescribeIndexStatsResponse
	err := s.call(ctx, "describe_index_stats", func(ctx context.Context, conn IndexConnection) error {
		var err error
		resp, err = conn.DescribeIndexStats(ctx)
		return err
	})
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		IndexFullness:    float64(resp.IndexFullness),
		TotalVectorCount: int(resp.TotalVectorCount),
	}
	if resp.Dimension != nil {
		st.Dimension = int(*resp.Dimension)
	}
	return st, nil
}

// Ping checks that the index answers a stats request.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.Stats(ctx); err != nil {
		return fmt.Errorf("describe index stats: %w", err)
	}
	return nil
}

// structFields converts string slices, which structpb rejects, into []any.
func structFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if ss, ok := v.([]string); ok {
			list := make([]any, len(ss))
			for i, s := range ss {
				list[i] = s
			}
			v = list
		}
		out[k] = v
	}
	return out
}
