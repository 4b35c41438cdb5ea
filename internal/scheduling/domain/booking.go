package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) String() string { return string(s) }

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// Valid reports whether the status is a known lifecycle state.
func (s BookingStatus) Valid() bool {
	return s == BookingStatusScheduled || s.IsTerminal()
}

// Booking is a confirmed session between one tutor and one student. Bookings
// are append-only facts: they are never deleted, only transitioned to a
// terminal state.
type Booking struct {
	sharedDomain.BaseAggregateRoot
	tutorID   uuid.UUID
	studentID uuid.UUID
	timeRange TimeRange
	status    BookingStatus
}

// NewBooking creates a scheduled booking and records the requested event.
func NewBooking(tutorID, studentID uuid.UUID, timeRange TimeRange) (*Booking, error) {
	if timeRange.IsZero() {
		return nil, ErrInvalidTimeRange
	}

	b := &Booking{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		tutorID:           tutorID,
		studentID:         studentID,
		timeRange:         timeRange,
		status:            BookingStatusScheduled,
	}
	b.AddDomainEvent(NewBookingRequested(b))
	return b, nil
}

func (b *Booking) TutorID() uuid.UUID    { return b.tutorID }
func (b *Booking) StudentID() uuid.UUID  { return b.studentID }
func (b *Booking) TimeRange() TimeRange  { return b.timeRange }
func (b *Booking) Status() BookingStatus { return b.status }

// IsParticipant reports whether the actor is the booking's tutor or student.
func (b *Booking) IsParticipant(actorID uuid.UUID) bool {
	return actorID == b.tutorID || actorID == b.studentID
}

// Complete transitions a scheduled booking to completed. Only valid once the
// session has ended.
func (b *Booking) Complete(now time.Time) error {
	if b.status != BookingStatusScheduled {
		return fmt.Errorf("%w: cannot complete a %s booking", ErrInvalidTransition, b.status)
	}
	if now.Before(b.timeRange.End()) {
		return fmt.Errorf("%w: booking has not ended yet", ErrInvalidTransition)
	}

	b.status = BookingStatusCompleted
	b.Touch()
	b.AddDomainEvent(NewBookingCompleted(b))
	return nil
}

// Cancel transitions a scheduled booking to cancelled. Only a participant may
// cancel, and only before the session starts.
func (b *Booking) Cancel(actorID uuid.UUID, now time.Time) error {
	if !b.IsParticipant(actorID) {
		return ErrForbidden
	}
	if b.status != BookingStatusScheduled {
		return fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, b.status)
	}
	if !now.Before(b.timeRange.Start()) {
		return fmt.Errorf("%w: cancellation window has closed", ErrInvalidTransition)
	}

	b.status = BookingStatusCancelled
	b.Touch()
	b.AddDomainEvent(NewBookingCancelled(b, actorID))
	return nil
}

// RehydrateBooking recreates a booking from persisted state.
func RehydrateBooking(
	id uuid.UUID,
	tutorID, studentID uuid.UUID,
	timeRange TimeRange,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), version),
		tutorID:   tutorID,
		studentID: studentID,
		timeRange: timeRange,
		status:    status,
	}
}
