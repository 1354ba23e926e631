package resultdomain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoundFormat declares how many attempts a round has and how they aggregate.
type RoundFormat string

const (
	BestOf1  RoundFormat = "1"
	BestOf2  RoundFormat = "2"
	BestOf3  RoundFormat = "3"
	Mean3    RoundFormat = "m"
	Average5 RoundFormat = "a"
)

// ParseRoundFormat validates s as a RoundFormat.
func ParseRoundFormat(s string) (RoundFormat, error) {
	switch f := RoundFormat(s); f {
	case BestOf1, BestOf2, BestOf3, Mean3, Average5:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown round format %q", ErrMalformedAttemptSet, s)
}

// Attempts returns the number of attempts a competitor is entitled to.
func (f RoundFormat) Attempts() int {
	switch f {
	case BestOf1:
		return 1
	case BestOf2:
		return 2
	case BestOf3, Mean3:
		return 3
	case Average5:
		return 5
	default:
		return 0
	}
}

// HasAverage reports whether the format defines an average or mean.
func (f RoundFormat) HasAverage() bool {
	return f == Mean3 || f == Average5
}

func (f RoundFormat) String() string {
	switch f {
	case BestOf1:
		return "Bo1"
	case BestOf2:
		return "Bo2"
	case BestOf3:
		return "Bo3"
	case Mean3:
		return "Mo3"
	case Average5:
		return "Ao5"
	default:
		return string(f)
	}
}

// Cutoff limits the attempts of competitors who do not reach Value within the
// first Attempts solves. Everyone else has their remaining attempts Skipped.
type Cutoff struct {
	Attempts int     `json:"attempts"`
	Value    Attempt `json:"value"`
}

// MaxCutoffAttempts is the largest number of attempts a cutoff may span.
const MaxCutoffAttempts = 2

// Validate checks that the cutoff can apply to a round of format f: it spans
// one or two attempts, fewer than the round has, and its value is a real result.
func (c Cutoff) Validate(f RoundFormat) error {
	if c.Attempts < 1 || c.Attempts > MaxCutoffAttempts || c.Attempts >= f.Attempts() {
		return fmt.Errorf("%w: cutoff over %d attempts in a %s round", ErrInvalidRound, c.Attempts, f)
	}
	if !c.Value.IsReal() {
		return fmt.Errorf("%w: cutoff value %d is not a result", ErrInvalidRound, c.Value)
	}
	return nil
}

// Made reports whether attempts satisfy the cutoff for ev.
func (c Cutoff) Made(attempts []Attempt, ev Event) bool {
	n := max(0, min(c.Attempts, len(attempts)))
	for _, a := range attempts[:n] {
		if a.IsSuccess() && CompareSingle(a, c.Value, ev) < 0 {
			return true
		}
	}
	return false
}

// ProceedType selects how a ProceedRule's Value is interpreted.
type ProceedType string

const (
	ProceedNumber     ProceedType = "number"
	ProceedPercentage ProceedType = "percentage"
)

// ProceedRule decides how many competitors advance out of a non-final round.
type ProceedRule struct {
	Type  ProceedType `json:"type"`
	Value int         `json:"value"`
}

// Limit returns the nominal number of advancing competitors for a round with
// the given number of entrants. Percentages round down.
func (p ProceedRule) Limit(entrants int) int {
	var limit int
	switch p.Type {
	case ProceedPercentage:
		limit = entrants * p.Value / 100
	default:
		limit = p.Value
	}
	return max(0, min(limit, entrants))
}

// Round is a contest round results can be entered for.
type Round struct {
	ID        uuid.UUID
	ContestID string
	EventID   string
	Format    RoundFormat
	Cutoff    *Cutoff
	IsFinal   bool
	Proceed   *ProceedRule
	Date      time.Time
}

// Validate checks the round's stored configuration.
func (r Round) Validate() error {
	if _, err := ParseRoundFormat(string(r.Format)); err != nil {
		return fmt.Errorf("%w: unknown round format %q", ErrInvalidRound, r.Format)
	}
	if r.Cutoff != nil {
		if err := r.Cutoff.Validate(r.Format); err != nil {
			return err
		}
	}
	if r.Proceed != nil && !r.IsFinal {
		switch r.Proceed.Type {
		case ProceedNumber:
			if r.Proceed.Value < 1 {
				return fmt.Errorf("%w: %d competitors proceed", ErrInvalidRound, r.Proceed.Value)
			}
		case ProceedPercentage:
			if r.Proceed.Value < 1 || r.Proceed.Value > 100 {
				return fmt.Errorf("%w: %d%% of competitors proceed", ErrInvalidRound, r.Proceed.Value)
			}
		default:
			return fmt.Errorf("%w: unknown proceed type %q", ErrInvalidRound, r.Proceed.Type)
		}
	}
	return nil
}

// ProceedRule returns the rule deciding who advances, or nil for a final round.
func (r Round) ProceedRule() *ProceedRule {
	if r.IsFinal {
		return nil
	}
	return r.Proceed
}
