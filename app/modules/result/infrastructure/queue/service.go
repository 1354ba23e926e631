package resultqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
)

// QueueName is the River queue rebuild jobs run on.
const QueueName = "records"

// Rebuilder re-derives the labels of an event.
type Rebuilder interface {
	RebuildEvent(ctx context.Context, eventID string) (int, error)
}

// Service schedules record rebuilds on River.
type Service struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewService connects a pgx pool for River and registers the rebuild worker.
func NewService(ctx context.Context, dsn string, rebuilder Rebuilder, logger *slog.Logger) (*Service, error) {
	logger = logger.With(slog.String("component", "river_queue"))

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRebuildRecordsWorker(rebuilder, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: 4},
		},
		Workers: workers,
		Logger:  logger,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	return &Service{client: client, pool: pool, logger: logger}, nil
}

// Start begins working jobs.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "Record rebuild queue started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// EnqueueRebuild schedules a rebuild of eventID. While a rebuild of the same
// event is still pending the existing job is returned.
func (s *Service) EnqueueRebuild(ctx context.Context, eventID string) (JobInfo, error) {
	res, err := s.client.Insert(ctx, RebuildRecordsJob{EventID: eventID}, &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		return JobInfo{}, fmt.Errorf("failed to enqueue rebuild: %w", err)
	}

	s.logger.InfoContext(ctx, "Record rebuild enqueued",
		slog.String("event_id", eventID),
		slog.Int64("job_id", res.Job.ID),
		slog.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return JobInfo{
		ID:        res.Job.ID,
		EventID:   eventID,
		State:     string(res.Job.State),
		Duplicate: res.UniqueSkippedAsDuplicate,
	}, nil
}

// Migrate brings the River schema up to date.
func Migrate(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// RebuildRecordsWorker runs RebuildRecordsJob.
type RebuildRecordsWorker struct {
	river.WorkerDefaults[RebuildRecordsJob]
	rebuilder Rebuilder
	logger    *slog.Logger
}

// NewRebuildRecordsWorker creates the worker.
func NewRebuildRecordsWorker(rebuilder Rebuilder, logger *slog.Logger) *RebuildRecordsWorker {
	return &RebuildRecordsWorker{rebuilder: rebuilder, logger: logger}
}

// Timeout bounds a single rebuild.
func (w *RebuildRecordsWorker) Timeout(*river.Job[RebuildRecordsJob]) time.Duration {
	return 10 * time.Minute
}

// Work re-derives the event's labels.
func (w *RebuildRecordsWorker) Work(ctx context.Context, job *river.Job[RebuildRecordsJob]) error {
	start := time.Now()
	changed, err := w.rebuilder.RebuildEvent(ctx, job.Args.EventID)
	if err != nil {
		w.logger.ErrorContext(ctx, "Record rebuild failed",
			slog.String("event_id", job.Args.EventID),
			slog.Int64("job_id", job.ID),
			slog.Int("attempt", job.Attempt),
			slog.String("error", err.Error()),
		)
		return err
	}
	w.logger.InfoContext(ctx, "Record rebuild finished",
		slog.String("event_id", job.Args.EventID),
		slog.Int64("job_id", job.ID),
		slog.Int("changed", changed),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
