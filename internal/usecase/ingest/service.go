package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/domain"
	"github.com/indicbot/indicbot/internal/domain/record"
	"github.com/indicbot/indicbot/internal/logger"
)

// Result reports the outcome of an ingestion run.
type Result struct {
	Ingested int
	Skipped  int
}

// Service translates, embeds and stores documents.
type Service struct {
	store     VectorWriter
	embed     Embedder
	translate Translator
	batchSize int
}

// New creates an ingest service that writes everything in a single upsert.
func New(store VectorWriter, embed Embedder, translate Translator) *Service {
	return &Service{store: store, embed: embed, translate: translate}
}

// WithBatchSize splits upserts into batches of at most size records. 0 means one upsert.
func (s *Service) WithBatchSize(size int) *Service {
	if size >= 0 {
		s.batchSize = size
	}
	return s
}

// Ingest stores every row that carries query text. Rows without it are skipped.
// Batches already written stay written when a later row fails.
func (s *Service) Ingest(ctx context.Context, rows []record.Row) (Result, error) {
	if len(rows) == 0 {
		return Result{}, domain.ErrNoRows
	}
	if !s.store.Configured() {
		return Result{}, domain.ErrStoreNotConfigured
	}

	log := logger.FromContext(ctx)
	var (
		res     Result
		pending []record.Record
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if _, err := s.store.Upsert(ctx, pending); err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		res.Ingested += len(pending)
		log.Info("Upserted batch",
			zap.Int("batch", len(pending)),
			zap.Int("ingested", res.Ingested),
		)
		pending = nil
		return nil
	}

	for _, raw := range rows {
		if !raw.Valid() {
			res.Skipped++
			continue
		}
		rec, err := s.build(ctx, raw.Normalize())
		if err != nil {
			return res, err
		}
		pending = append(pending, rec)

		if s.batchSize > 0 && len(pending) >= s.batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}

	if res.Ingested == 0 && len(pending) == 0 {
		return res, domain.ErrNoValidRows
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}

func (s *Service) build(ctx context.Context, row record.Row) (record.Record, error) {
	english := domain.ToEnglish(ctx, s.translate, row.Query, row.Language)

	emb, err := s.embed.Embed(ctx, english)
	if err != nil {
		return record.Record{}, fmt.Errorf("embed row %s: %w", row.ID, err)
	}
	if emb.IsEmpty() {
		return record.Record{}, fmt.Errorf("embed row %s: %w", row.ID, domain.ErrEmptyEmbedding)
	}
	return record.New(row, english, emb.Embedding), nil
}
