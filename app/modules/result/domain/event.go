package resultdomain

import (
	"fmt"
	"slices"
)

// EventFormat determines what an attempt value measures.
type EventFormat string

const (
	FormatTime   EventFormat = "time"
	FormatNumber EventFormat = "number"
	FormatPoints EventFormat = "points"
)

// Direction is the scoring direction of an event.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

// Event describes a puzzle event results can be recorded for.
type Event struct {
	ID                string
	Name              string
	Format            EventFormat
	Participants      int
	AllowsUnknownTime bool
}

// Direction returns the scoring direction of the event.
func (e Event) Direction() Direction {
	if e.Format == FormatPoints {
		return HigherIsBetter
	}
	return LowerIsBetter
}

// AverageScale is the factor averages are multiplied by before rounding. Time
// averages stay in centiseconds; move and point averages keep two decimals.
func (e Event) AverageScale() int64 {
	if e.Format == FormatTime {
		return 1
	}
	return 100
}

// IsTeamEvent reports whether a result is entered for more than one competitor.
func (e Event) IsTeamEvent() bool {
	return e.Participants > 1
}

var catalog = []Event{
	{ID: "333", Name: "3x3x3 Cube", Format: FormatTime, Participants: 1},
	{ID: "222", Name: "2x2x2 Cube", Format: FormatTime, Participants: 1},
	{ID: "444", Name: "4x4x4 Cube", Format: FormatTime, Participants: 1},
	{ID: "555", Name: "5x5x5 Cube", Format: FormatTime, Participants: 1},
	{ID: "666", Name: "6x6x6 Cube", Format: FormatTime, Participants: 1},
	{ID: "777", Name: "7x7x7 Cube", Format: FormatTime, Participants: 1},
	{ID: "333bf", Name: "3x3x3 Blindfolded", Format: FormatTime, Participants: 1},
	{ID: "333oh", Name: "3x3x3 One-Handed", Format: FormatTime, Participants: 1},
	{ID: "333fm", Name: "3x3x3 Fewest Moves", Format: FormatNumber, Participants: 1},
	{ID: "clock", Name: "Clock", Format: FormatTime, Participants: 1},
	{ID: "minx", Name: "Megaminx", Format: FormatTime, Participants: 1},
	{ID: "pyram", Name: "Pyraminx", Format: FormatTime, Participants: 1},
	{ID: "skewb", Name: "Skewb", Format: FormatTime, Participants: 1},
	{ID: "sq1", Name: "Square-1", Format: FormatTime, Participants: 1},
	{ID: "444bf", Name: "4x4x4 Blindfolded", Format: FormatTime, Participants: 1},
	{ID: "555bf", Name: "5x5x5 Blindfolded", Format: FormatTime, Participants: 1},
	{ID: "333mbf", Name: "3x3x3 Multi-Blind", Format: FormatPoints, Participants: 1, AllowsUnknownTime: true},
	{ID: "333_team_bld", Name: "3x3x3 Team Blindfolded", Format: FormatTime, Participants: 2},
	{ID: "333_team_factory", Name: "3x3x3 Team Factory", Format: FormatPoints, Participants: 3},
	{ID: "333_speed_bld", Name: "3x3x3 Speed Blindfolded", Format: FormatTime, Participants: 1, AllowsUnknownTime: true},
	{ID: "333_linear_fm", Name: "3x3x3 Linear Fewest Moves", Format: FormatNumber, Participants: 1},
	{ID: "fto", Name: "Face-Turning Octahedron", Format: FormatTime, Participants: 1},
}

var eventsByID = func() map[string]Event {
	m := make(map[string]Event, len(catalog))
	for _, e := range catalog {
		m[e.ID] = e
	}
	return m
}()

// LookupEvent returns the catalog entry for id.
func LookupEvent(id string) (Event, error) {
	e, ok := eventsByID[id]
	if !ok {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, id)
	}
	return e, nil
}

// Events returns a copy of the event catalog.
func Events() []Event {
	return slices.Clone(catalog)
}
