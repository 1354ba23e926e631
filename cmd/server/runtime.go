package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/cube-records/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "cube-records"

// runtime holds the process-wide resources shared by every command.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *bun.DB
	registry *prometheus.Registry
	// tracing is nil when spans are not exported.
	tracing  *sdktrace.TracerProvider
}

func newRuntime(c *cli.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Observability)

	tracing, err := initTracing(c.Context, cfg.Observability)
	if err != nil {
		return nil, err
	}
	if tracing != nil {
		logger.Info("Exporting traces", "endpoint", cfg.Observability.OTLPEndpoint)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())

	pingCtx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		shutdownTracing(tracing, logger, cfg.HTTP.ShutdownTimeout)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(pgdb, "results"),
	)

	return &runtime{cfg: cfg, logger: logger, db: db, registry: registry, tracing: tracing}, nil
}

func (rt *runtime) Close() {
	if err := rt.db.Close(); err != nil {
		rt.logger.Error("Error closing database connection", "error", err)
	}
	shutdownTracing(rt.tracing, rt.logger, rt.cfg.HTTP.ShutdownTimeout)
}

// shutdownTracing flushes buffered spans.
func shutdownTracing(tp *sdktrace.TracerProvider, logger *slog.Logger, timeout time.Duration) {
	if tp == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down tracer provider", "error", err)
	}
}

func newLogger(cfg config.ObservabilityConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.Environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("environment", cfg.Environment),
	)
}
