package resultservice

import (
	"context"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeleteResult removes a result and re-derives every later label of its event
// without it.
func (s *ResultService) DeleteResult(ctx context.Context, id uuid.UUID) error {
	existing, err := s.getResult(ctx, nil, id)
	if err != nil {
		return err
	}

	_, err = withTelemetry(s, ctx, "DeleteResult", existing.EventID, func(ctx context.Context) (struct{}, error) {
		ev, err := resultdomain.LookupEvent(existing.EventID)
		if err != nil {
			return struct{}{}, err
		}

		changes, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) ([]resultdomain.RecordChange, error) {
			if err := s.repo.AcquireEventLock(ctx, db, ev.ID, s.lockTimeout); err != nil {
				return nil, err
			}
			row, err := s.getResult(ctx, db, id)
			if err != nil {
				return nil, err
			}
			if err := s.repo.DeleteResult(ctx, db, id); err != nil {
				return nil, err
			}

			removed := row.ToDomain()
			changes := resultdomain.DiffLabels(removed, removed.Labels(), resultdomain.Labels{})
			cascaded, err := s.rederive(ctx, db, ev, removed.Date, id)
			if err != nil {
				return nil, err
			}
			return append(changes, cascaded...), nil
		})
		if err != nil {
			return struct{}{}, writeError("DeleteResult", ev.ID, err)
		}

		s.publishChanges(ctx, changes)
		return struct{}{}, nil
	})
	return err
}
