package result

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	resultservice "github.com/Black-And-White-Club/cube-records/app/modules/result/application"
	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resulthandlers "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/handlers"
	resultmetrics "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/metrics"
	resultpublisher "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/publisher"
	resultqueue "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/queue"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/Black-And-White-Club/cube-records/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Deps are the shared resources the module is built from.
type Deps struct {
	DB         *bun.DB
	Logger     *slog.Logger
	Tracer     trace.Tracer
	Registerer prometheus.Registerer
	// Router receives the HTTP routes; nil skips route registration.
	Router chi.Router
	// Background enables the River rebuild queue. Commands that only run a
	// single operation leave it off.
	Background bool
}

// Module represents the results module.
type Module struct {
	Service   resultservice.Service
	Handlers  resulthandlers.Handlers
	queue     *resultqueue.Service
	publisher *resultpublisher.Publisher
	logger    *slog.Logger
}

// NewModule creates the results module.
func NewModule(ctx context.Context, cfg *config.Config, deps Deps) (*Module, error) {
	logger := deps.Logger
	logger.InfoContext(ctx, "Initializing results module")

	settings, err := Settings(cfg.Records)
	if err != nil {
		return nil, err
	}

	var metrics resultmetrics.ResultMetrics = resultmetrics.NewNoop()
	if deps.Registerer != nil {
		metrics = resultmetrics.NewPrometheusMetrics(deps.Registerer)
	}

	m := &Module{logger: logger}

	var publisher resultservice.RecordPublisher
	if cfg.NATS.URL != "" {
		pub, err := resultpublisher.NewNATSPublisher(ctx, cfg.NATS.URL, watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, err
		}
		m.publisher = resultpublisher.New(pub, logger)
		publisher = m.publisher
	} else {
		logger.InfoContext(ctx, "NATS URL not set, record changes will only be logged")
	}

	repo := resultdb.NewRepository(deps.DB)
	service := resultservice.NewResultService(repo, publisher, logger, metrics, deps.Tracer, deps.DB, settings)
	m.Service = service

	var queue resulthandlers.RebuildQueue
	if deps.Background {
		q, err := resultqueue.NewService(ctx, cfg.Postgres.DSN, service, logger)
		if err != nil {
			m.closePublisher(ctx)
			return nil, fmt.Errorf("failed to create rebuild queue: %w", err)
		}
		m.queue = q
		queue = q
	}

	handlers := resulthandlers.NewResultHandlers(service, queue, logger, deps.Tracer)
	m.Handlers = handlers

	if deps.Router != nil {
		limiter := resulthandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
		resulthandlers.RegisterRoutes(deps.Router, handlers, limiter)
	}

	return m, nil
}

// Run starts background processing and blocks until ctx is done.
func (m *Module) Run(ctx context.Context) error {
	if m.queue == nil {
		<-ctx.Done()
		return nil
	}
	// Close stops the queue gracefully; cancelling the start context would abort running jobs.
	if err := m.queue.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Close releases the module's connections.
func (m *Module) Close(ctx context.Context) error {
	var errs []error
	if m.queue != nil {
		if err := m.queue.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close publisher: %w", err))
		}
	}
	m.logger.InfoContext(ctx, "Results module closed")
	return errors.Join(errs...)
}

func (m *Module) closePublisher(ctx context.Context) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.Close(); err != nil {
		m.logger.WarnContext(ctx, "Failed to close publisher", "error", err)
	}
}

// Settings converts the records configuration into service settings.
func Settings(cfg config.RecordsConfig) (resultservice.Settings, error) {
	settings := resultservice.Settings{LockTimeout: cfg.LockTimeout}
	if len(cfg.Tiers) == 0 {
		return settings, nil
	}

	names := make([]resultdomain.RecordTier, 0, len(cfg.Tiers))
	for _, s := range cfg.Tiers {
		tier, err := resultdomain.ParseRecordTier(s)
		if err != nil {
			return settings, fmt.Errorf("records.tiers: %w", err)
		}
		names = append(names, tier)
	}
	tiers, err := resultdomain.TiersFor(names)
	if err != nil {
		return settings, fmt.Errorf("records.tiers: %w", err)
	}
	settings.Tiers = tiers
	return settings, nil
}
