// Command metdatad runs the streaming QC service: raw observation rows come
// off a Kafka topic, get mapped onto the canonical schema and QC-flagged,
// and leave as canonical observations on the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/kkartas/metdata/internal/adapter/http"
	kafkaadapter "github.com/kkartas/metdata/internal/adapter/kafka"
	"github.com/kkartas/metdata/internal/config"
	"github.com/kkartas/metdata/internal/mapping"
	"github.com/kkartas/metdata/internal/observability"
	"github.com/kkartas/metdata/internal/pipeline"
	"github.com/kkartas/metdata/internal/qc"
	"github.com/kkartas/metdata/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	m, err := mapping.Load(cfg.MappingPath)
	if err != nil {
		logger.Error("failed to load mapping", "path", cfg.MappingPath, "error", err)
		os.Exit(1)
	}

	qcCfg := qc.DefaultConfig()
	if cfg.QCConfigPath != "" {
		qcCfg, err = qc.LoadConfig(cfg.QCConfigPath)
		if err != nil {
			logger.Error("failed to load qc config", "path", cfg.QCConfigPath, "error", err)
			os.Exit(1)
		}
	}

	sch := schema.Default()
	engine := qc.New(sch, qcCfg)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(sch, m, engine,
		mapping.ApplyOptions{SourceTZ: cfg.SourceTZ}, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start QC pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
