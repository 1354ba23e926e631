package resultservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	resultdomain "github.com/Black-And-White-Club/cube-records/app/modules/result/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Every stored result carries the labels the classifier computes for it as of
// its own date with itself excluded. The functions below restore that after a
// write, inside the write's transaction and under the event lock.

// cascadeInsert repairs the results dated on or after r once r is stored with
// its current values. Only labels r can take away are recomputed: a later
// result loses nothing to r unless it holds a label and r is at least as good.
func (s *ResultService) cascadeInsert(ctx context.Context, db bun.IDB, ev resultdomain.Event, r resultdomain.Result) ([]resultdomain.RecordChange, error) {
	rows, err := s.repo.GetEventResultsSince(ctx, db, r.EventID, r.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to load results since %s: %w", r.Date.Format(time.DateOnly), err)
	}

	classifier := s.classifier(db)
	var changes []resultdomain.RecordChange
	scanned := 0
	for i := range rows {
		later := rows[i].ToDomain()
		if later.ID == r.ID {
			continue
		}
		scanned++

		labels := later.Labels()
		for _, m := range resultdomain.Metrics {
			if m.Tier(later) == resultdomain.TierNone {
				continue
			}
			value := m.Value(r)
			if !value.IsReal() || m.Compare(value, m.Value(later), ev) > 0 {
				continue
			}
			tier, err := classifier.ClassifyMetric(ctx, later, ev, m, later.Date, later.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reclassify result %s: %w", later.ID, err)
			}
			labels = withTier(labels, m, tier)
		}

		changed, err := s.storeLabels(ctx, db, later, labels)
		if err != nil {
			return nil, err
		}
		changes = append(changes, changed...)
	}

	s.metrics.RecordCascade(ctx, r.EventID, scanned, len(changes))
	return changes, nil
}

// rederive recomputes both labels of every result of the event dated on or
// after since from scratch. A zero since covers the whole event; skip is left
// alone (uuid.Nil skips nothing).
func (s *ResultService) rederive(ctx context.Context, db bun.IDB, ev resultdomain.Event, since time.Time, skip uuid.UUID) ([]resultdomain.RecordChange, error) {
	rows, err := s.repo.GetEventResultsSince(ctx, db, ev.ID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load results since %s: %w", since.Format(time.DateOnly), err)
	}

	classifier := s.classifier(db)
	var changes []resultdomain.RecordChange
	scanned := 0
	for i := range rows {
		r := rows[i].ToDomain()
		if r.ID == skip {
			continue
		}
		scanned++

		labels, err := classifier.Classify(ctx, r, ev, r.Date, r.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reclassify result %s: %w", r.ID, err)
		}
		changed, err := s.storeLabels(ctx, db, r, labels)
		if err != nil {
			return nil, err
		}
		changes = append(changes, changed...)
	}

	s.metrics.RecordCascade(ctx, ev.ID, scanned, len(changes))
	s.logger.DebugContext(ctx, "Re-derived record labels",
		slog.String("event_id", ev.ID),
		slog.String("since", since.Format(time.DateOnly)),
		slog.Int("scanned", scanned),
		slog.Int("changed", len(changes)),
	)
	return changes, nil
}

// storeLabels writes labels for r when they differ from what r holds.
func (s *ResultService) storeLabels(ctx context.Context, db bun.IDB, r resultdomain.Result, labels resultdomain.Labels) ([]resultdomain.RecordChange, error) {
	changes := resultdomain.DiffLabels(r, r.Labels(), labels)
	if len(changes) == 0 {
		return nil, nil
	}
	if err := s.repo.UpdateRecordTiers(ctx, db, r.ID, labels.Single, labels.Average); err != nil {
		return nil, fmt.Errorf("failed to relabel result %s: %w", r.ID, err)
	}
	return changes, nil
}

func withTier(l resultdomain.Labels, m resultdomain.Metric, tier resultdomain.RecordTier) resultdomain.Labels {
	if m == resultdomain.MetricAverage {
		l.Average = tier
	} else {
		l.Single = tier
	}
	return l
}
