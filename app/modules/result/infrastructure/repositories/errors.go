package resultdb

import "errors"

// Sentinel errors for the repository layer.
// These are infrastructure-level signals; the service layer decides what they mean to callers.
var (
	// ErrNotFound indicates the requested result or round does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoRowsAffected indicates an UPDATE or DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrLockNotAcquired indicates the event lock timed out, or the transaction
	// was chosen as a deadlock or serialization victim.
	ErrLockNotAcquired = errors.New("event lock not acquired")
)
