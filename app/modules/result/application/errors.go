package resultservice

import (
	"errors"
	"fmt"
)

// Service errors. Handlers map them to user-facing responses; pure validation
// failures come from resultdomain.
var (
	// ErrResultNotFound indicates the result does not exist.
	ErrResultNotFound = errors.New("result not found")

	// ErrRoundNotFound indicates the round does not exist.
	ErrRoundNotFound = errors.New("round not found")

	// ErrRoundMismatch indicates a candidate names a round of a different event.
	ErrRoundMismatch = errors.New("round belongs to a different event")

	// ErrConcurrentModification indicates another write to the same event held
	// the event lock for too long or preempted this one. Safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification of event results")

	// ErrCascadeFailure indicates the write or its record repair failed and the
	// whole write was rolled back. Safe to retry.
	ErrCascadeFailure = errors.New("record cascade failed")
)

// CascadeError carries the context of a failed write. It matches ErrCascadeFailure.
type CascadeError struct {
	Operation string
	EventID   string
	Err       error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s on event %s: %v: %v", e.Operation, e.EventID, ErrCascadeFailure, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

func (e *CascadeError) Is(target error) bool {
	return target == ErrCascadeFailure
}
