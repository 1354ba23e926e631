package resultdomain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Location holds the region fields shared by every competitor of a result.
// A field is empty when the competitors do not share it.
type Location struct {
	CountryCode   string `json:"country_code,omitempty"`
	ContinentCode string `json:"continent_code,omitempty"`
}

// Validate rejects locations that no record scope can be derived from.
func (l Location) Validate() error {
	if l.CountryCode != "" && l.ContinentCode == "" {
		return fmt.Errorf("%w: country %s has no continent", ErrInvalidRegionScope, l.CountryCode)
	}
	return nil
}

// Candidate is an attempt set for one competitor or team before aggregation.
type Candidate struct {
	EventID       string
	RoundID       *uuid.UUID
	Format        RoundFormat
	CompetitorIDs []string
	Attempts      []Attempt
	Date          time.Time
	Location
}

// Result is an aggregated, record-labelled attempt set.
type Result struct {
	ID            uuid.UUID
	EventID       string
	RoundID       *uuid.UUID
	Format        RoundFormat
	CompetitorIDs []string
	Attempts      []Attempt
	Date          time.Time
	Location

	Best    Attempt
	Average Attempt

	SingleRecordTier  RecordTier
	AverageRecordTier RecordTier

	CreatedAt time.Time
}

// Labels returns the record labels currently stored on r.
func (r Result) Labels() Labels {
	return Labels{Single: r.SingleRecordTier, Average: r.AverageRecordTier}
}

// SetLabels overwrites the record labels of r.
func (r *Result) SetLabels(l Labels) {
	r.SingleRecordTier = l.Single
	r.AverageRecordTier = l.Average
}

// NewResult validates c against ev and aggregates its attempts. The returned
// Result has no id and no record labels yet.
func NewResult(c Candidate, ev Event, cutoff *Cutoff) (Result, error) {
	if c.EventID != ev.ID {
		return Result{}, fmt.Errorf("%w: candidate is for %q, not %q", ErrUnknownEvent, c.EventID, ev.ID)
	}
	if err := validateCompetitors(c.CompetitorIDs, ev); err != nil {
		return Result{}, err
	}
	if err := c.Location.Validate(); err != nil {
		return Result{}, err
	}
	agg, err := Aggregate(c.Attempts, c.Format, cutoff, ev)
	if err != nil {
		return Result{}, err
	}

	return Result{
		EventID:       c.EventID,
		RoundID:       c.RoundID,
		Format:        c.Format,
		CompetitorIDs: slices.Clone(c.CompetitorIDs),
		Attempts:      slices.Clone(c.Attempts),
		Date:          TruncateDate(c.Date),
		Location:      c.Location,
		Best:          agg.Best,
		Average:       agg.Average,
	}, nil
}

// Reaggregate replaces the attempts of r and recomputes its metrics.
func (r *Result) Reaggregate(attempts []Attempt, ev Event, cutoff *Cutoff) error {
	agg, err := Aggregate(attempts, r.Format, cutoff, ev)
	if err != nil {
		return err
	}
	r.Attempts = slices.Clone(attempts)
	r.Best = agg.Best
	r.Average = agg.Average
	return nil
}

// TruncateDate drops the time of day; results are dated by calendar day in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateCompetitors(ids []string, ev Event) error {
	if len(ids) != ev.Participants {
		return fmt.Errorf("%w: %s needs %d competitor(s), got %d", ErrInvalidCompetitors, ev.ID, ev.Participants, len(ids))
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty competitor id", ErrInvalidCompetitors)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: competitor %s listed twice", ErrInvalidCompetitors, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
