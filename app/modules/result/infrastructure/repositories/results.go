package resultdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new result repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) AcquireEventLock(ctx context.Context, db bun.IDB, eventID string, timeout time.Duration) error {
	db = r.resolveDB(db)
	if timeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())
		if _, err := db.NewRaw(stmt).Exec(ctx); err != nil {
			return fmt.Errorf("results.AcquireEventLock: %w", err)
		}
	}
	// hashtext() gives a stable int4 key for the event id.
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "results:"+eventID).Exec(ctx); err != nil {
		if IsLockConflict(err) {
			return fmt.Errorf("results.AcquireEventLock: %w: %w", ErrLockNotAcquired, err)
		}
		return fmt.Errorf("results.AcquireEventLock: %w", err)
	}
	return nil
}

// SQLSTATE codes that mean "another writer got in the way; retry".
const (
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

// IsLockConflict reports whether err is a Postgres lock timeout, deadlock or
// serialization failure from either the pgdriver or the pgx driver.
func IsLockConflict(err error) bool {
	var code string
	var pgdErr pgdriver.Error
	var pgxErr *pgconn.PgError
	switch {
	case errors.As(err, &pgdErr):
		code = pgdErr.Field('C')
	case errors.As(err, &pgxErr):
		code = pgxErr.Code
	default:
		return false
	}
	switch code {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

func (r *Impl) GetResult(ctx context.Context, db bun.IDB, id uuid.UUID) (*Result, error) {
	db = r.resolveDB(db)
	result := new(Result)
	err := db.NewSelect().
		Model(result).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("results.GetResult: %w", err)
	}
	return result, nil
}

func (r *Impl) InsertResult(ctx context.Context, db bun.IDB, result *Result) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(result).Returning("created_at").Exec(ctx); err != nil {
		return fmt.Errorf("results.InsertResult: %w", err)
	}
	return nil
}

func (r *Impl) UpdateResult(ctx context.Context, db bun.IDB, result *Result) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model(result).
		Column("attempts", "best", "average", "date", "single_record_tier", "average_record_tier").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("results.UpdateResult: %w", err)
	}
	return checkAffected(res, "results.UpdateResult")
}

func (r *Impl) UpdateRecordTiers(ctx context.Context, db bun.IDB, id uuid.UUID, single, average resultdomain.RecordTier) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Result)(nil)).
		Set("single_record_tier = ?", string(single)).
		Set("average_record_tier = ?", string(average)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("results.UpdateRecordTiers: %w", err)
	}
	return checkAffected(res, "results.UpdateRecordTiers")
}

func (r *Impl) DeleteResult(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Result)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("results.DeleteResult: %w", err)
	}
	return checkAffected(res, "results.DeleteResult")
}

func (r *Impl) GetResultsForRound(ctx context.Context, db bun.IDB, roundID uuid.UUID) ([]Result, error) {
	db = r.resolveDB(db)
	var results []Result
	err := db.NewSelect().
		Model(&results).
		Where("round_id = ?", roundID).
		Order("created_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("results.GetResultsForRound: %w", err)
	}
	return results, nil
}

func (r *Impl) GetEventResultsSince(ctx context.Context, db bun.IDB, eventID string, since time.Time) ([]Result, error) {
	db = r.resolveDB(db)
	var results []Result
	q := db.NewSelect().
		Model(&results).
		Where("event_id = ?", eventID)
	if !since.IsZero() {
		q = q.Where("date >= ?", since)
	}
	err := q.Order("date ASC", "created_at ASC", "id ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("results.GetEventResultsSince: %w", err)
	}
	return results, nil
}

func (r *Impl) GetStanding(ctx context.Context, db bun.IDB, q resultdomain.StandingQuery) (*resultdomain.Standing, error) {
	db = r.resolveDB(db)
	col := metricColumn(q.Metric)
	dir := "ASC"
	if q.Direction == resultdomain.HigherIsBetter {
		dir = "DESC"
	}

	row := new(Result)
	sel := db.NewSelect().
		Model(row).
		Where("event_id = ?", q.EventID).
		Where("date <= ?", q.AsOf).
		Where("? > 0", bun.Ident(col)).
		Where("? <> ?", bun.Ident(col), int64(resultdomain.Unknown))
	sel = whereRegion(sel, q.Region)
	if len(q.Excluding) > 0 {
		sel = sel.Where("id NOT IN (?)", bun.In(q.Excluding))
	}
	err := sel.
		OrderExpr("? "+dir, bun.Ident(col)).
		Order("date ASC", "created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("results.GetStanding: %w", err)
	}
	return row.ToStanding(q.Metric), nil
}

func (r *Impl) GetRecordHistory(ctx context.Context, db bun.IDB, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]Result, error) {
	db = r.resolveDB(db)
	tiers := []string{string(resultdomain.TierWorld)}
	switch {
	case region.Country != "":
		tiers = append(tiers, string(resultdomain.TierContinental), string(resultdomain.TierNational))
	case region.Continent != "":
		tiers = append(tiers, string(resultdomain.TierContinental))
	}

	var results []Result
	err := whereRegion(db.NewSelect().Model(&results), region).
		Where("event_id = ?", eventID).
		Where("? IN (?)", bun.Ident(tierColumn(metric)), bun.In(tiers)).
		Order("date ASC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("results.GetRecordHistory: %w", err)
	}
	return results, nil
}

func whereRegion(q *bun.SelectQuery, region resultdomain.Region) *bun.SelectQuery {
	if region.Continent != "" {
		q = q.Where("continent_code = ?", region.Continent)
	}
	if region.Country != "" {
		q = q.Where("country_code = ?", region.Country)
	}
	return q
}

func metricColumn(m resultdomain.Metric) string {
	if m == resultdomain.MetricAverage {
		return "average"
	}
	return "best"
}

func tierColumn(m resultdomain.Metric) string {
	if m == resultdomain.MetricAverage {
		return "average_record_tier"
	}
	return "single_record_tier"
}

func checkAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNoRowsAffected)
	}
	return nil
}
