package resultservice

import (
	"context"
	"fmt"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RankRound ranks the stored results of a round. Proceeds is only computed for
// non-final rounds.
func (s *ResultService) RankRound(ctx context.Context, roundID uuid.UUID) ([]resultdomain.RankedResult, error) {
	round, err := s.getRound(ctx, nil, roundID)
	if err != nil {
		return nil, err
	}
	ev, err := resultdomain.LookupEvent(round.EventID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.GetResultsForRound(ctx, nil, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results of round %s: %w", roundID, err)
	}
	results := make([]resultdomain.Result, len(rows))
	for i := range rows {
		results[i] = rows[i].ToDomain()
	}
	return resultdomain.Rank(results, round.Format, ev, round.ProceedRule()), nil
}

// GetResult retrieves a stored result.
func (s *ResultService) GetResult(ctx context.Context, id uuid.UUID) (*resultdomain.Result, error) {
	row, err := s.getResult(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	r := row.ToDomain()
	return &r, nil
}

// GetRound retrieves a round.
func (s *ResultService) GetRound(ctx context.Context, id uuid.UUID) (*resultdomain.Round, error) {
	return s.getRound(ctx, nil, id)
}

// RecordProgression lists the results that held a record of region for metric
// at the time they were set, oldest first.
func (s *ResultService) RecordProgression(ctx context.Context, eventID string, metric resultdomain.Metric, region resultdomain.Region) ([]resultdomain.Result, error) {
	if _, err := resultdomain.LookupEvent(eventID); err != nil {
		return nil, err
	}
	rows, err := s.repo.GetRecordHistory(ctx, nil, eventID, metric, region)
	if err != nil {
		return nil, fmt.Errorf("failed to load record history: %w", err)
	}
	results := make([]resultdomain.Result, len(rows))
	for i := range rows {
		results[i] = rows[i].ToDomain()
	}
	return results, nil
}

// RebuildEvent re-derives every label of an event. It repairs data written
// before a change to the active tiers and returns the number of changed labels.
func (s *ResultService) RebuildEvent(ctx context.Context, eventID string) (int, error) {
	return withTelemetry(s, ctx, "RebuildEvent", eventID, func(ctx context.Context) (int, error) {
		ev, err := resultdomain.LookupEvent(eventID)
		if err != nil {
			return 0, err
		}
		changes, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]resultdomain.RecordChange, error) {
			if err := s.repo.AcquireEventLock(ctx, db, ev.ID, s.lockTimeout); err != nil {
				return nil, err
			}
			return s.rederive(ctx, db, ev, time.Time{}, uuid.Nil)
		})
		if err != nil {
			return 0, writeError("RebuildEvent", ev.ID, err)
		}
		s.publishChanges(ctx, changes)
		return len(changes), nil
	})
}
