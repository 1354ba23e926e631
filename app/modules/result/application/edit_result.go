package resultservice

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	resultdb "github.com/Black-And-White-Club/cube-records/app/modules/result/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// EditResult applies new attempts and/or a new date to a result, relabels it and
// repairs later results according to the direction the edit moved it.
func (s *ResultService) EditResult(ctx context.Context, id uuid.UUID, req EditRequest) (*resultdomain.Result, error) {
	existing, err := s.getResult(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	return withTelemetry(s, ctx, "EditResult", existing.EventID, func(ctx context.Context) (*resultdomain.Result, error) {
		ev, err := resultdomain.LookupEvent(existing.EventID)
		if err != nil {
			return nil, err
		}
		cutoff, err := s.cutoffFor(ctx, existing.RoundID)
		if err != nil {
			return nil, err
		}
		if req.Attempts != nil {
			if _, err := resultdomain.Aggregate(*req.Attempts, resultdomain.RoundFormat(existing.Format), cutoff, ev); err != nil {
				return nil, err
			}
		}

		type outcome struct {
			result  resultdomain.Result
			changes []resultdomain.RecordChange
		}
		out, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (outcome, error) {
			if err := s.repo.AcquireEventLock(ctx, db, ev.ID, s.lockTimeout); err != nil {
				return outcome{}, err
			}
			// Re-read under the lock; the row may have changed since the first read.
			row, err := s.getResult(ctx, db, id)
			if err != nil {
				return outcome{}, err
			}

			before := row.ToDomain()
			after := before
			after.Attempts = slices.Clone(before.Attempts)
			if req.Attempts != nil {
				if err := after.Reaggregate(*req.Attempts, ev, cutoff); err != nil {
					return outcome{}, err
				}
			}
			if req.Date != nil {
				after.Date = resultdomain.TruncateDate(*req.Date)
			}

			labels, err := s.classifier(db).Classify(ctx, after, ev, after.Date, after.ID)
			if err != nil {
				return outcome{}, fmt.Errorf("failed to classify result: %w", err)
			}
			after.SetLabels(labels)
			if err := s.repo.UpdateResult(ctx, db, resultdb.ResultFromDomain(after)); err != nil {
				return outcome{}, err
			}
			changes := resultdomain.DiffLabels(after, before.Labels(), labels)

			direction := resultdomain.ClassifyEdit(before, after, ev)
			s.logger.InfoContext(ctx, "Repairing records after edit",
				slog.String("result_id", id.String()),
				slog.String("direction", direction.String()),
			)

			var cascaded []resultdomain.RecordChange
			switch direction {
			case resultdomain.EditBetter:
				cascaded, err = s.cascadeInsert(ctx, db, ev, after)
			case resultdomain.EditWorse:
				cascaded, err = s.rederive(ctx, db, ev, before.Date, after.ID)
			case resultdomain.EditMixed:
				since := before.Date
				if after.Date.Before(since) {
					since = after.Date
				}
				cascaded, err = s.rederive(ctx, db, ev, since, after.ID)
			}
			if err != nil {
				return outcome{}, err
			}
			return outcome{result: after, changes: append(changes, cascaded...)}, nil
		})
		if err != nil {
			return nil, writeError("EditResult", ev.ID, err)
		}

		s.publishChanges(ctx, out.changes)
		return &out.result, nil
	})
}

// cutoffFor returns the cutoff of the round a result belongs to, if any.
func (s *ResultService) cutoffFor(ctx context.Context, roundID *uuid.UUID) (*resultdomain.Cutoff, error) {
	if roundID == nil {
		return nil, nil
	}
	round, err := s.getRound(ctx, nil, *roundID)
	if err != nil {
		return nil, err
	}
	return round.Cutoff, nil
}
