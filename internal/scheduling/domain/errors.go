package domain

import "errors"

var (
	// ErrInvalidTimeRange is returned when a range does not satisfy start < end.
	ErrInvalidTimeRange = errors.New("end time must be after start time")

	// ErrInvalidWindow is returned when an availability window fails validation:
	// inverted local times, unknown timezone or an inverted effective range.
	ErrInvalidWindow = errors.New("invalid availability window")

	// ErrInvalidTransition is returned when a booking is asked to leave a
	// terminal state, or when a guarded transition runs outside its time window.
	ErrInvalidTransition = errors.New("invalid booking transition")

	// ErrSlotTaken is returned when the requested range overlaps an existing
	// scheduled booking for the tutor.
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrOutsideAvailability is returned when the requested range is not fully
	// contained in one of the tutor's free slots.
	ErrOutsideAvailability = errors.New("requested range is outside tutor availability")

	// ErrVersionMismatch is returned when a transition carries a stale version
	// token.
	ErrVersionMismatch = errors.New("booking was modified by another process")

	// ErrStorageConflict is returned by the ledger when a concurrent insert
	// won the race for an overlapping range.
	ErrStorageConflict = errors.New("conflicting booking was inserted concurrently")

	// ErrForbidden is returned when the acting party is not a participant of
	// the booking being modified.
	ErrForbidden = errors.New("actor is not allowed to perform this action")

	// ErrBookingNotFound is returned when a booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrWindowNotFound is returned when an availability window does not exist.
	ErrWindowNotFound = errors.New("availability window not found")
)
