package resultdb

import (
	"context"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Result is one aggregated attempt set with its record labels.
type Result struct {
	bun.BaseModel `bun:"table:results,alias:r"`

	ID            uuid.UUID  `bun:"id,pk,type:uuid"`
	EventID       string     `bun:"event_id,notnull"`
	RoundID       *uuid.UUID `bun:"round_id,type:uuid"`
	Format        string     `bun:"format,notnull"`
	CompetitorIDs []string   `bun:"competitor_ids,array,notnull"`
	Attempts      []int64    `bun:"attempts,array,notnull"`
	Date          time.Time  `bun:"date,type:date,notnull"`
	CountryCode   string     `bun:"country_code,nullzero"`
	ContinentCode string     `bun:"continent_code,nullzero"`

	Best    int64 `bun:"best,notnull"`
	Average int64 `bun:"average,notnull"`

	SingleRecordTier  string `bun:"single_record_tier,notnull,default:''"`
	AverageRecordTier string `bun:"average_record_tier,notnull,default:''"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Result)(nil)

func (r *Result) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Round is the read-only view of a contest round results are entered for.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:rd"`

	ID        uuid.UUID                 `bun:"id,pk,type:uuid"`
	ContestID string                    `bun:"contest_id,notnull"`
	EventID   string                    `bun:"event_id,notnull"`
	Format    string                    `bun:"format,notnull"`
	Cutoff    *resultdomain.Cutoff      `bun:"cutoff,type:jsonb"`
	IsFinal   bool                      `bun:"is_final,notnull"`
	Proceed   *resultdomain.ProceedRule `bun:"proceed,type:jsonb"`
	Date      time.Time                 `bun:"date,type:date,notnull"`
	CreatedAt time.Time                 `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Round)(nil)

func (r *Round) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ToDomain converts the row into a domain round.
func (r *Round) ToDomain() resultdomain.Round {
	return resultdomain.Round{
		ID:        r.ID,
		ContestID: r.ContestID,
		EventID:   r.EventID,
		Format:    resultdomain.RoundFormat(r.Format),
		Cutoff:    r.Cutoff,
		IsFinal:   r.IsFinal,
		Proceed:   r.Proceed,
		Date:      r.Date.UTC(),
	}
}

// RoundFromDomain converts a domain round into a row.
func RoundFromDomain(r resultdomain.Round) *Round {
	return &Round{
		ID:        r.ID,
		ContestID: r.ContestID,
		EventID:   r.EventID,
		Format:    string(r.Format),
		Cutoff:    r.Cutoff,
		IsFinal:   r.IsFinal,
		Proceed:   r.Proceed,
		Date:      r.Date,
	}
}

// ToDomain converts the row into a domain result.
func (r *Result) ToDomain() resultdomain.Result {
	attempts := make([]resultdomain.Attempt, len(r.Attempts))
	for i, a := range r.Attempts {
		attempts[i] = resultdomain.Attempt(a)
	}
	return resultdomain.Result{
		ID:            r.ID,
		EventID:       r.EventID,
		RoundID:       r.RoundID,
		Format:        resultdomain.RoundFormat(r.Format),
		CompetitorIDs: r.CompetitorIDs,
		Attempts:      attempts,
		Date:          r.Date.UTC(),
		Location: resultdomain.Location{
			CountryCode:   r.CountryCode,
			ContinentCode: r.ContinentCode,
		},
		Best:              resultdomain.Attempt(r.Best),
		Average:           resultdomain.Attempt(r.Average),
		SingleRecordTier:  resultdomain.RecordTier(r.SingleRecordTier),
		AverageRecordTier: resultdomain.RecordTier(r.AverageRecordTier),
		CreatedAt:         r.CreatedAt,
	}
}

// ResultFromDomain converts a domain result into a row.
func ResultFromDomain(r resultdomain.Result) *Result {
	attempts := make([]int64, len(r.Attempts))
	for i, a := range r.Attempts {
		attempts[i] = int64(a)
	}
	return &Result{
		ID:                r.ID,
		EventID:           r.EventID,
		RoundID:           r.RoundID,
		Format:            string(r.Format),
		CompetitorIDs:     r.CompetitorIDs,
		Attempts:          attempts,
		Date:              r.Date,
		CountryCode:       r.CountryCode,
		ContinentCode:     r.ContinentCode,
		Best:              int64(r.Best),
		Average:           int64(r.Average),
		SingleRecordTier:  string(r.SingleRecordTier),
		AverageRecordTier: string(r.AverageRecordTier),
		CreatedAt:         r.CreatedAt,
	}
}

// ToStanding exposes the row as a standing record for metric m.
func (r *Result) ToStanding(m resultdomain.Metric) *resultdomain.Standing {
	d := r.ToDomain()
	return &resultdomain.Standing{
		ResultID: r.ID,
		Value:    m.Value(d),
		Location: d.Location,
		Date:     d.Date,
	}
}
