package resultdomain

import (
	"time"

	"github.com/google/uuid"
)

// RecordChange describes one label of one result changing value.
type RecordChange struct {
	ResultID uuid.UUID
	EventID  string
	Metric   Metric
	OldTier  RecordTier
	NewTier  RecordTier
	Date     time.Time
}

// DiffLabels lists the label changes between before and after for result r.
func DiffLabels(r Result, before, after Labels) []RecordChange {
	var changes []RecordChange
	for _, m := range Metrics {
		oldTier, newTier := m.Of(before), m.Of(after)
		if oldTier == newTier {
			continue
		}
		changes = append(changes, RecordChange{
			ResultID: r.ID,
			EventID:  r.EventID,
			Metric:   m,
			OldTier:  oldTier,
			NewTier:  newTier,
			Date:     r.Date,
		})
	}
	return changes
}
