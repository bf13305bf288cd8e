package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/couchcryptid/pna-map-generator/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/pna-map-generator/internal/adapter/kafka"
	"github.com/couchcryptid/pna-map-generator/internal/adapter/mapbox"
	"github.com/couchcryptid/pna-map-generator/internal/config"
	"github.com/couchcryptid/pna-map-generator/internal/dataset"
	"github.com/couchcryptid/pna-map-generator/internal/domain"
	"github.com/couchcryptid/pna-map-generator/internal/observability"
	"github.com/couchcryptid/pna-map-generator/internal/pipeline"
	"github.com/couchcryptid/pna-map-generator/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	palette, err := config.LoadPalette(cfg.PaletteFile)
	if err != nil {
		logger.Error("failed to load palette", "error", err)
		os.Exit(1)
	}

	postcodes, stats, err := dataset.LoadPostcodes(cfg.PostcodeFile)
	if err != nil {
		logger.Error("failed to load postcode table", "path", cfg.PostcodeFile, "error", err)
		os.Exit(1)
	}
	logger.Info("postcode table loaded", "postcodes", postcodes.Len(), "rows", stats.Rows, "skipped", stats.Skipped)

	// Isochrone provider (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var provider domain.IsochroneProvider
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, cfg.MapboxMaxRetries, metrics, logger)
		provider = mapbox.NewCachedProvider(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox isochrones enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox isochrones disabled")
	}

	// Coverage report publishing (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.ReportPublisher
	var writer *kafkaadapter.ReportPublisher
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewReportPublisher(cfg, logger)
		publisher = writer
		logger.Info("coverage report publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaReportTopic)
	}

	generator := pipeline.NewGenerator(provider, palette, publisher, logger, metrics)
	store := session.NewStore(metrics.SessionsActive)
	api := httpadapter.NewHandler(store, postcodes, generator, cfg.MaxUploadBytes, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, api, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go store.RunSweeper(ctx, sweepInterval(cfg.SessionTTL), cfg.SessionTTL, logger)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// sweepInterval checks for idle sessions a few times per TTL, at most once
// a second and at least once a minute.
func sweepInterval(ttl time.Duration) time.Duration {
	return min(max(ttl/4, time.Second), time.Minute)
}
