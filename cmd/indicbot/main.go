package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/indicbot/indicbot/internal/bootstrap"
	"github.com/indicbot/indicbot/internal/config"
	"github.com/indicbot/indicbot/internal/metrics"
	chiTransport "github.com/indicbot/indicbot/internal/transport/chi"
	healthuc "github.com/indicbot/indicbot/internal/usecase/health"
	ingestuc "github.com/indicbot/indicbot/internal/usecase/ingest"
	queryuc "github.com/indicbot/indicbot/internal/usecase/query"
	"github.com/indicbot/indicbot/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := bootstrap.NewLogger(env, cfg.Logging)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting indicbot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterUpstreamMetrics()

	pipeline := bootstrap.BuildPipeline(context.Background(), cfg, logger)
	defer pipeline.Close()

	querySvc := queryuc.New(pipeline.Store, pipeline.Embedder, pipeline.Translator)
	// One upsert per request, as the endpoint has always behaved.
	ingestSvc := ingestuc.New(pipeline.Store, pipeline.Embedder, pipeline.Translator)
	healthSvc := healthuc.New(pipeline.Store, pipeline.EmbeddingHealth)
	if pipeline.Cache != nil {
		healthSvc.WithCache(pipeline.Cache)
	}

	server := chiTransport.NewServer(querySvc, ingestSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server running", zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
