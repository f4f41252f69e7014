// Command indicbot-ingest loads an NDJSON file of legal queries into the vector index.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/bootstrap"
	"github.com/indicbot/indicbot/internal/config"
	"github.com/indicbot/indicbot/internal/domain"
	logpkg "github.com/indicbot/indicbot/internal/logger"
	"github.com/indicbot/indicbot/internal/metrics"
	ingestuc "github.com/indicbot/indicbot/internal/usecase/ingest"
)

func main() {
	os.Exit(run())
}

func run() int {
	batchSize := flag.Int("batch-size", 0, "records per upsert (default: ingest.batch_size from config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-batch-size N] <path-to-jsonl>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	path := flag.Arg(0)

	_ = godotenv.Load()

	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}

	logger, err := bootstrap.NewLogger(env, cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if *batchSize <= 0 {
		*batchSize = cfg.Ingest.BatchSize
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterUpstreamMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := bootstrap.BuildPipeline(ctx, cfg, logger)
	defer pipeline.Close()

	if !pipeline.Store.Configured() {
		logger.Error("Missing PINECONE_API_KEY")
		return 1
	}

	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		logger.Error("Failed to open input", zap.String("path", path), zap.Error(err))
		return 1
	}
	defer func() { _ = f.Close() }()

	rows, err := readRows(f)
	if err != nil {
		logger.Error("Failed to read input", zap.String("path", path), zap.Error(err))
		return 1
	}

	logger.Info("Ingesting",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("batch_size", *batchSize),
	)

	svc := ingestuc.New(pipeline.Store, pipeline.Embedder, pipeline.Translator).WithBatchSize(*batchSize)
	res, err := svc.Ingest(logpkg.ContextWithLogger(ctx, logger), rows)
	switch {
	case errors.Is(err, domain.ErrNoRows), errors.Is(err, domain.ErrNoValidRows):
		logger.Warn("Nothing to ingest", zap.Int("skipped", res.Skipped))
		return 0
	case err != nil:
		logger.Error("Ingestion failed",
			zap.Int("ingested", res.Ingested),
			zap.Error(err),
		)
		return 1
	}

	logger.Info("Ingestion complete",
		zap.Int("ingested", res.Ingested),
		zap.Int("skipped", res.Skipped),
	)
	return 0
}
