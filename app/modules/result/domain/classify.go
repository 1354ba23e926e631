package resultdomain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Labels is the pair of record labels of a result.
type Labels struct {
	Single  RecordTier `json:"single"`
	Average RecordTier `json:"average"`
}

// StandingQuery asks for the best record-eligible value in a region as of a date.
type StandingQuery struct {
	EventID   string
	Metric    Metric
	Direction Direction
	Region    Region
	AsOf      time.Time
	Excluding []uuid.UUID
}

// Standing is the best result of a region as of some date.
type Standing struct {
	ResultID uuid.UUID
	Value    Attempt
	Location Location
	Date     time.Time
}

// StandingLookup finds the standing result for a query. It returns nil when
// no result in the region qualifies.
type StandingLookup interface {
	Standing(ctx context.Context, q StandingQuery) (*Standing, error)
}

// Classifier assigns record tiers by walking tier descriptors from the widest
// scope to the narrowest.
type Classifier struct {
	Tiers    []TierDescriptor
	Standing StandingLookup
}

// NewClassifier builds a classifier; nil tiers enable every tier.
func NewClassifier(tiers []TierDescriptor, lookup StandingLookup) *Classifier {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &Classifier{Tiers: tiers, Standing: lookup}
}

// Classify computes both labels of r as of asOf, ignoring the excluded results.
func (c *Classifier) Classify(ctx context.Context, r Result, ev Event, asOf time.Time, excluding ...uuid.UUID) (Labels, error) {
	single, err := c.ClassifyMetric(ctx, r, ev, MetricSingle, asOf, excluding...)
	if err != nil {
		return Labels{}, err
	}
	average, err := c.ClassifyMetric(ctx, r, ev, MetricAverage, asOf, excluding...)
	if err != nil {
		return Labels{}, err
	}
	return Labels{Single: single, Average: average}, nil
}

// ClassifyMetric computes the label of one metric of r.
//
// A tier is awarded when no standing exists in the result's region for that
// tier or the result is at least as good as the standing. A tier whose region
// already contains the better holder found at a wider tier cannot be won and
// is skipped without a lookup.
func (c *Classifier) ClassifyMetric(ctx context.Context, r Result, ev Event, m Metric, asOf time.Time, excluding ...uuid.UUID) (RecordTier, error) {
	value := m.Value(r)
	if !value.IsReal() {
		return TierNone, nil
	}

	var holder *Standing
	for _, d := range c.Tiers {
		region, ok := d.Scope(r.Location)
		if !ok {
			continue
		}
		if holder != nil && d.Matches(holder.Location, r.Location) {
			continue
		}

		standing, err := c.Standing.Standing(ctx, StandingQuery{
			EventID:   r.EventID,
			Metric:    m,
			Direction: ev.Direction(),
			Region:    region,
			AsOf:      asOf,
			Excluding: excluding,
		})
		if err != nil {
			return TierNone, fmt.Errorf("standing %s %s in %s: %w", r.EventID, m, region, err)
		}
		if standing == nil || m.Compare(value, standing.Value, ev) <= 0 {
			return d.Tier, nil
		}
		holder = standing
	}
	return TierNone, nil
}
