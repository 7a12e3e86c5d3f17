package scheduling

import "errors"

// Failure kinds surfaced by the scheduling core. Callers classify with
// errors.Is; wrapped messages carry the detail.
var (
	// ErrValidation marks malformed input (past start time, negative
	// duration, missing ids). Never recovered locally.
	ErrValidation = errors.New("invalid input")

	// ErrSlotConflict marks a reservation interval overlapping an existing
	// calendar-holding reservation for the barber. The caller should
	// re-query availability and retry with another slot.
	ErrSlotConflict = errors.New("slot already taken")

	// ErrInvalidTransition marks a lifecycle transition that is not legal
	// from the entity's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrAlreadyQueued, ErrNotQueued and ErrNotInService mark queue
	// precondition violations.
	ErrAlreadyQueued = errors.New("client already in queue")
	ErrNotQueued     = errors.New("client not in queue")
	ErrNotInService  = errors.New("client not in service")

	// ErrBusy marks contention acquiring a resource guard. Safe to retry;
	// the operation had no effect.
	ErrBusy = errors.New("resource busy")

	// ErrNotFound marks a missing reservation, queue entry or barber.
	ErrNotFound = errors.New("not found")
)
