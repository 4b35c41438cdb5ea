package domain

import (
	"context"

	"github.com/google/uuid"
)

// AvailabilityRepository persists a tutor's availability windows.
type AvailabilityRepository interface {
	// Save stores a new availability window.
	Save(ctx context.Context, window *AvailabilityWindow) error

	// FindByID finds a window by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*AvailabilityWindow, error)

	// ListByTutor returns all windows for a tutor.
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*AvailabilityWindow, error)

	// Delete removes a window. Deleting a window that does not exist is not
	// an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// BookingRepository is the append-only booking ledger.
type BookingRepository interface {
	// Append inserts a new scheduled booking. The insert and the overlap
	// check against existing scheduled bookings for the tutor are a single
	// atomic operation; a lost race returns ErrStorageConflict.
	Append(ctx context.Context, booking *Booking) error

	// FindByID finds a booking by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// BookingsFor returns the tutor's scheduled bookings overlapping the
	// range, in chronological order.
	BookingsFor(ctx context.Context, tutorID uuid.UUID, timeRange TimeRange) ([]*Booking, error)

	// DueForCompletion returns scheduled bookings whose end has passed.
	DueForCompletion(ctx context.Context, limit int) ([]*Booking, error)

	// Transition moves a scheduled booking to a terminal status with a
	// compare-and-swap on the version token. A stale version returns
	// ErrVersionMismatch; a terminal current status returns
	// ErrInvalidTransition.
	Transition(ctx context.Context, id uuid.UUID, expectedVersion int64, status BookingStatus) error
}
