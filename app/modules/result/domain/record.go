package resultdomain

import (
	"fmt"
	"slices"
)

// RecordTier labels a result as a standing record at some regional scope.
type RecordTier string

const (
	TierNone        RecordTier = ""
	TierNational    RecordTier = "NR"
	TierContinental RecordTier = "CR"
	TierWorld       RecordTier = "WR"
)

// Rank orders tiers by scope, None lowest.
func (t RecordTier) Rank() int {
	switch t {
	case TierNational:
		return 1
	case TierContinental:
		return 2
	case TierWorld:
		return 3
	default:
		return 0
	}
}

// ParseRecordTier accepts both the stored abbreviation and the long name.
func ParseRecordTier(s string) (RecordTier, error) {
	switch s {
	case "", "none":
		return TierNone, nil
	case "NR", "national":
		return TierNational, nil
	case "CR", "continental":
		return TierContinental, nil
	case "WR", "world":
		return TierWorld, nil
	}
	return "", fmt.Errorf("unknown record tier %q", s)
}

// Metric selects which aggregated value of a result a record is kept for.
type Metric string

const (
	MetricSingle  Metric = "single"
	MetricAverage Metric = "average"
)

// Metrics lists every metric records are tracked for.
var Metrics = []Metric{MetricSingle, MetricAverage}

// ParseMetric validates s as a Metric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricSingle, MetricAverage:
		return m, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Value returns the metric's value on r.
func (m Metric) Value(r Result) Attempt {
	if m == MetricAverage {
		return r.Average
	}
	return r.Best
}

// Compare orders two values of the metric for ev.
func (m Metric) Compare(a, b Attempt, ev Event) int {
	if m == MetricAverage {
		return CompareAverage(a, b, ev)
	}
	return CompareSingle(a, b, ev)
}

// Tier returns the label r holds for the metric.
func (m Metric) Tier(r Result) RecordTier {
	if m == MetricAverage {
		return r.AverageRecordTier
	}
	return r.SingleRecordTier
}

// Of returns the label for the metric out of l.
func (m Metric) Of(l Labels) RecordTier {
	if m == MetricAverage {
		return l.Average
	}
	return l.Single
}

// Region is the scope a standing record is looked up in. The zero value is the whole world.
type Region struct {
	Continent string
	Country   string
}

func (r Region) String() string {
	switch {
	case r.Country != "":
		return r.Country
	case r.Continent != "":
		return r.Continent
	default:
		return "world"
	}
}

// TierDescriptor binds a record tier to the region a result competes in for it.
// Scope reports false when the location cannot hold the tier.
type TierDescriptor struct {
	Tier  RecordTier
	Scope func(Location) (Region, bool)
}

// Matches reports whether a and b fall in the same region for the tier.
func (d TierDescriptor) Matches(a, b Location) bool {
	ra, okA := d.Scope(a)
	rb, okB := d.Scope(b)
	return okA && okB && ra == rb
}

var (
	WorldTier = TierDescriptor{
		Tier: TierWorld,
		Scope: func(Location) (Region, bool) {
			return Region{}, true
		},
	}
	ContinentalTier = TierDescriptor{
		Tier: TierContinental,
		Scope: func(l Location) (Region, bool) {
			return Region{Continent: l.ContinentCode}, l.ContinentCode != ""
		},
	}
	NationalTier = TierDescriptor{
		Tier: TierNational,
		Scope: func(l Location) (Region, bool) {
			return Region{Country: l.CountryCode}, l.CountryCode != ""
		},
	}
)

// DefaultTiers returns all tiers, widest scope first.
func DefaultTiers() []TierDescriptor {
	return []TierDescriptor{WorldTier, ContinentalTier, NationalTier}
}

// TiersFor returns the descriptors for the named tiers, widest scope first.
// An empty list enables every tier.
func TiersFor(names []RecordTier) ([]TierDescriptor, error) {
	if len(names) == 0 {
		return DefaultTiers(), nil
	}
	var tiers []TierDescriptor
	for _, d := range DefaultTiers() {
		if slices.Contains(names, d.Tier) {
			tiers = append(tiers, d)
		}
	}
	for _, n := range names {
		if n.Rank() == 0 {
			return nil, fmt.Errorf("record tier %q cannot be enabled", n)
		}
	}
	return tiers, nil
}

// RegionFor builds the region of a lookup request. Both empty means the world.
func RegionFor(continent, country string) (Region, error) {
	if continent != "" && country != "" {
		return Region{}, fmt.Errorf("%w: pick either a continent or a country", ErrInvalidRegionScope)
	}
	return Region{Continent: continent, Country: country}, nil
}
