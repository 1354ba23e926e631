package resultdomain

import "errors"

// Validation errors raised before anything is persisted. Handlers report these
// to the caller as bad input.
var (
	// ErrMalformedAttemptSet indicates the attempts do not fit the round format or cutoff.
	ErrMalformedAttemptSet = errors.New("malformed attempt set")

	// ErrInvalidRegionScope indicates region fields that cannot back a record scope,
	// such as a country without a continent.
	ErrInvalidRegionScope = errors.New("invalid region scope")

	// ErrUnknownEvent indicates an event id outside the catalog.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrInvalidCompetitors indicates the competitor list does not match the event's participant count.
	ErrInvalidCompetitors = errors.New("invalid competitors")
)

// ErrInvalidRound indicates a stored round whose configuration results cannot
// be checked against, such as a cutoff spanning no attempts.
var ErrInvalidRound = errors.New("invalid round configuration")
