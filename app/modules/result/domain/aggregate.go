package resultdomain

import (
	"fmt"
	"slices"
)

// Aggregation is the pair of metrics derived from an attempt set.
type Aggregation struct {
	Best    Attempt `json:"best"`
	Average Attempt `json:"average"`
}

// Aggregate computes the best single and the average of attempts under format.
// cutoff may be nil. The attempt set is validated before anything is computed.
func Aggregate(attempts []Attempt, format RoundFormat, cutoff *Cutoff, ev Event) (Aggregation, error) {
	if err := ValidateAttempts(attempts, format, cutoff, ev); err != nil {
		return Aggregation{}, err
	}

	best := attempts[0]
	for _, a := range attempts[1:] {
		best = BetterOf(best, a, ev)
	}

	agg := Aggregation{Best: best}
	if !format.HasAverage() || slices.Contains(attempts, Skipped) {
		return agg, nil
	}

	switch format {
	case Average5:
		agg.Average = trimmedAverage(attempts, ev)
	case Mean3:
		agg.Average = mean(attempts, ev)
	}
	return agg, nil
}

// ValidateAttempts checks the shape of an attempt set without aggregating it.
func ValidateAttempts(attempts []Attempt, format RoundFormat, cutoff *Cutoff, ev Event) error {
	want := format.Attempts()
	if want == 0 {
		return fmt.Errorf("%w: unknown round format %q", ErrMalformedAttemptSet, format)
	}
	if len(attempts) != want {
		return fmt.Errorf("%w: %s expects %d attempts, got %d", ErrMalformedAttemptSet, format, want, len(attempts))
	}

	firstSkipped := -1
	for i, a := range attempts {
		if !a.IsValid() {
			return fmt.Errorf("%w: attempt %d has invalid value %d", ErrMalformedAttemptSet, i+1, a)
		}
		if a == Unknown && !ev.AllowsUnknownTime {
			return fmt.Errorf("%w: event %s does not allow unknown attempts", ErrMalformedAttemptSet, ev.ID)
		}
		if a == Skipped {
			if firstSkipped < 0 {
				firstSkipped = i
			}
			continue
		}
		if firstSkipped >= 0 {
			return fmt.Errorf("%w: attempt %d follows a skipped attempt", ErrMalformedAttemptSet, i+1)
		}
	}

	if firstSkipped < 0 {
		if cutoff != nil && cutoff.Attempts < len(attempts) && !cutoff.Made(attempts, ev) {
			return fmt.Errorf("%w: attempts entered after a missed cutoff", ErrMalformedAttemptSet)
		}
		return nil
	}
	if firstSkipped == 0 {
		return fmt.Errorf("%w: no attempts were entered", ErrMalformedAttemptSet)
	}
	if cutoff == nil || firstSkipped != cutoff.Attempts {
		return fmt.Errorf("%w: skipped attempts are only allowed after a missed cutoff", ErrMalformedAttemptSet)
	}
	if cutoff.Made(attempts, ev) {
		return fmt.Errorf("%w: cutoff was made but later attempts are missing", ErrMalformedAttemptSet)
	}
	return nil
}

func trimmedAverage(attempts []Attempt, ev Event) Attempt {
	nonReal := 0
	for _, a := range attempts {
		if !a.IsReal() {
			nonReal++
		}
	}
	if nonReal > 1 {
		return DNF
	}

	sorted := slices.Clone(attempts)
	slices.SortStableFunc(sorted, func(a, b Attempt) int { return CompareSingle(a, b, ev) })
	return roundedMean(sorted[1:len(sorted)-1], ev.AverageScale())
}

func mean(attempts []Attempt, ev Event) Attempt {
	for _, a := range attempts {
		if !a.IsReal() {
			return DNF
		}
	}
	return roundedMean(attempts, ev.AverageScale())
}

// roundedMean rounds half up after scaling: (2*sum*scale + n) / 2n.
func roundedMean(values []Attempt, scale int64) Attempt {
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	n := int64(len(values))
	return Attempt((2*sum*scale + n) / (2 * n))
}
