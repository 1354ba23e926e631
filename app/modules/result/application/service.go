package resultservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultmetrics "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/metrics"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLockTimeout bounds how long a write waits for the event lock.
const DefaultLockTimeout = 5 * time.Second

// Settings tunes record maintenance.
type Settings struct {
	// Tiers are the active record tiers, widest first. Nil enables all tiers.
	Tiers []resultdomain.TierDescriptor
	// LockTimeout bounds the wait for the per-event lock; zero uses DefaultLockTimeout.
	LockTimeout time.Duration
}

// ResultService implements the Service interface.
type ResultService struct {
	repo        resultdb.Repository
	publisher   RecordPublisher
	logger      *slog.Logger
	metrics     resultmetrics.ResultMetrics
	tracer      trace.Tracer
	db          *bun.DB
	tiers       []resultdomain.TierDescriptor
	lockTimeout time.Duration
}

// NewResultService creates a new ResultService. publisher may be nil, in which
// case record changes are only logged.
func NewResultService(
	repo resultdb.Repository,
	publisher RecordPublisher,
	logger *slog.Logger,
	metrics resultmetrics.ResultMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	settings Settings,
) *ResultService {
	tiers := settings.Tiers
	if tiers == nil {
		tiers = resultdomain.DefaultTiers()
	}
	lockTimeout := settings.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &ResultService{
		repo:        repo,
		publisher:   publisher,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		tiers:       tiers,
		lockTimeout: lockTimeout,
	}
}

var _ Service = (*ResultService)(nil)

// operationFunc is the generic signature for service operation functions.
type operationFunc[T any] func(ctx context.Context) (T, error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[T any](
	s *ResultService,
	ctx context.Context,
	operationName string,
	eventID string,
	op operationFunc[T],
) (result T, err error) {
	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("event_id", eventID),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, eventID)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		slog.String("operation", operationName),
		slog.String("event_id", eventID),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("event_id", eventID),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, eventID)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
			var zero T
			result = zero
		}
	}()

	result, err = op(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, eventID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	s.logger.InfoContext(ctx, operationName+" completed successfully",
		slog.String("operation", operationName),
		slog.String("event_id", eventID),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, eventID)
	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[T any](
	s *ResultService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (T, error),
) (T, error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result T
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// writeError classifies a failure of a locked write.
func writeError(operation, eventID string, err error) error {
	switch {
	case errors.Is(err, resultdb.ErrLockNotAcquired), resultdb.IsLockConflict(err):
		return fmt.Errorf("%s: %w: %w", operation, ErrConcurrentModification, err)
	case errors.Is(err, ErrResultNotFound):
		return err
	default:
		return &CascadeError{Operation: operation, EventID: eventID, Err: err}
	}
}

// classifier returns a classifier whose standing lookups run on db.
func (s *ResultService) classifier(db bun.IDB) *resultdomain.Classifier {
	return resultdomain.NewClassifier(s.tiers, standingLookup{repo: s.repo, db: db})
}

// standingLookup answers classifier lookups from the repository. Initial
// classification and cascade repair both go through it.
type standingLookup struct {
	repo resultdb.Repository
	db   bun.IDB
}

func (l standingLookup) Standing(ctx context.Context, q resultdomain.StandingQuery) (*resultdomain.Standing, error) {
	return l.repo.GetStanding(ctx, l.db, q)
}

// publishChanges reports committed label changes. Publication failures are
// logged; the write has already committed.
func (s *ResultService) publishChanges(ctx context.Context, changes []resultdomain.RecordChange) {
	for _, c := range changes {
		s.metrics.RecordRecordChange(ctx, c.EventID, string(c.Metric), string(c.NewTier))
		s.logger.InfoContext(ctx, "Record label changed",
			slog.String("result_id", c.ResultID.String()),
			slog.String("event_id", c.EventID),
			slog.String("metric", string(c.Metric)),
			slog.String("old_tier", string(c.OldTier)),
			slog.String("new_tier", string(c.NewTier)),
		)
	}
	if s.publisher == nil || len(changes) == 0 {
		return
	}
	if err := s.publisher.PublishRecordChanges(ctx, changes); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish record changes",
			slog.Int("count", len(changes)),
			slog.Any("error", err),
		)
	}
}

func (s *ResultService) getResult(ctx context.Context, db bun.IDB, id uuid.UUID) (*resultdb.Result, error) {
	row, err := s.repo.GetResult(ctx, db, id)
	if err != nil {
		if errors.Is(err, resultdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
		}
		return nil, fmt.Errorf("failed to get result %s: %w", id, err)
	}
	return row, nil
}

func (s *ResultService) getRound(ctx context.Context, db bun.IDB, id uuid.UUID) (*resultdomain.Round, error) {
	row, err := s.repo.GetRound(ctx, db, id)
	if err != nil {
		if errors.Is(err, resultdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoundNotFound, id)
		}
		return nil, fmt.Errorf("failed to get round %s: %w", id, err)
	}
	round := row.ToDomain()
	if err := round.Validate(); err != nil {
		return nil, fmt.Errorf("round %s: %w", id, err)
	}
	return &round, nil
}
