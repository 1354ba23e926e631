package resultservice

import (
	"context"
	"fmt"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubmitResult aggregates the candidate, labels it, stores it and repairs the
// labels of later results of the event, all in one transaction.
func (s *ResultService) SubmitResult(ctx context.Context, candidate resultdomain.Candidate) (*resultdomain.Result, error) {
	return withTelemetry(s, ctx, "SubmitResult", candidate.EventID, func(ctx context.Context) (*resultdomain.Result, error) {
		ev, err := resultdomain.LookupEvent(candidate.EventID)
		if err != nil {
			return nil, err
		}

		var cutoff *resultdomain.Cutoff
		if candidate.RoundID != nil {
			round, err := s.getRound(ctx, nil, *candidate.RoundID)
			if err != nil {
				return nil, err
			}
			if round.EventID != candidate.EventID {
				return nil, fmt.Errorf("%w: round %s is for %s", ErrRoundMismatch, round.ID, round.EventID)
			}
			candidate.Format = round.Format
			cutoff = round.Cutoff
			if candidate.Date.IsZero() {
				candidate.Date = round.Date
			}
		}
		if candidate.Date.IsZero() {
			return nil, fmt.Errorf("%w: result has no date", resultdomain.ErrMalformedAttemptSet)
		}

		result, err := resultdomain.NewResult(candidate, ev, cutoff)
		if err != nil {
			return nil, err
		}
		result.ID = uuid.New()

		changes, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]resultdomain.RecordChange, error) {
			if err := s.repo.AcquireEventLock(ctx, db, ev.ID, s.lockTimeout); err != nil {
				return nil, err
			}

			labels, err := s.classifier(db).Classify(ctx, result, ev, result.Date, result.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to classify result: %w", err)
			}
			result.SetLabels(labels)

			row := resultdb.ResultFromDomain(result)
			if err := s.repo.InsertResult(ctx, db, row); err != nil {
				return nil, err
			}
			result.CreatedAt = row.CreatedAt

			changes := resultdomain.DiffLabels(result, resultdomain.Labels{}, labels)
			cascaded, err := s.cascadeInsert(ctx, db, ev, result)
			if err != nil {
				return nil, err
			}
			return append(changes, cascaded...), nil
		})
		if err != nil {
			return nil, writeError("SubmitResult", ev.ID, err)
		}

		s.publishChanges(ctx, changes)
		return &result, nil
	})
}
