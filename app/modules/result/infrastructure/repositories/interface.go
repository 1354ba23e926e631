package resultdb

import (
	"context"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for result persistence.
// Every method accepts the bun.IDB to run against so that the service can run a
// whole write inside one transaction; nil falls back to the repository's connection.
//
// Error semantics:
//   - ErrNotFound: record does not exist
//   - ErrNoRowsAffected: UPDATE/DELETE matched no rows
//   - ErrLockNotAcquired: the per-event lock could not be taken
//   - Other errors: infrastructure failures (DB connection, query errors)
type Repository interface {
	// AcquireEventLock takes the transaction-scoped advisory lock serializing
	// record maintenance for one event. Must be called within a transaction.
	AcquireEventLock(ctx context.Context, db bun.IDB, eventID string, timeout time.Duration) error

	// GetResult retrieves a single result.
	GetResult(ctx context.Context, db bun.IDB, id uuid.UUID) (*Result, error)

	// InsertResult stores a new result, assigning its id when unset.
	InsertResult(ctx context.Context, db bun.IDB, result *Result) error

	// UpdateResult rewrites the attempts, metrics, date and labels of a result.
	UpdateResult(ctx context.Context, db bun.IDB, result *Result) error

	// UpdateRecordTiers rewrites only the record labels of a result.
	UpdateRecordTiers(ctx context.Context, db bun.IDB, id uuid.UUID, single, average resultdomain.RecordTier) error

	// DeleteResult removes a result.
	DeleteResult(ctx context.Context, db bun.IDB, id uuid.UUID) error

	// GetResultsForRound retrieves every result entered for a round.
	GetResultsForRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]Result, error)

	// GetEventResultsSince retrieves the results of an event dated on or after since,
	// oldest first. A zero since returns the whole event.
	GetEventResultsSince(ctx context.Context, db bun.IDB, eventID string, since time.Time) ([]Result, error)

	// GetStanding returns the best record-eligible result matching the query, or nil.
	GetStanding(ctx context.Context, db bun.IDB, q resultdomain.StandingQuery) (*resultdomain.Standing, error)

	// GetRecordHistory retrieves the results that set a record of the region for a metric, oldest first.
	GetRecordHistory(ctx context.Context, db bun.IDB, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]Result, error)

	// GetRound retrieves a round.
	GetRound(ctx context.Context, db bun.IDB, id uuid.UUID) (*Round, error)

	// InsertRound stores a round. Rounds are owned by the contest service; this
	// exists for seeding and tests.
	InsertRound(ctx context.Context, db bun.IDB, round *Round) error
}
