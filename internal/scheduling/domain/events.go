package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

const (
	BookingAggregateType = "Booking"
	WindowAggregateType  = "AvailabilityWindow"

	RoutingKeyBookingRequested = "scheduling.booking.requested"
	RoutingKeyBookingCancelled = "scheduling.booking.cancelled"
	RoutingKeyBookingCompleted = "scheduling.booking.completed"
	RoutingKeyWindowAdded      = "scheduling.availability.window_added"
	RoutingKeyWindowRemoved    = "scheduling.availability.window_removed"
)

// BookingRequested is emitted when a booking is appended to the ledger.
type BookingRequested struct {
	sharedDomain.BaseEvent
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// NewBookingRequested creates a BookingRequested event.
func NewBookingRequested(b *Booking) *BookingRequested {
	return &BookingRequested{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), BookingAggregateType, RoutingKeyBookingRequested),
		TutorID:   b.TutorID(),
		StudentID: b.StudentID(),
		StartTime: b.TimeRange().Start(),
		EndTime:   b.TimeRange().End(),
	}
}

// BookingCancelled is emitted when a participant cancels a booking.
type BookingCancelled struct {
	sharedDomain.BaseEvent
	TutorID         uuid.UUID              `json:"tutor_id"`
	StudentID       uuid.UUID              `json:"student_id"`
	CancelledBy     uuid.UUID              `json:"cancelled_by"`
	CancelledByRole sharedDomain.ActorRole `json:"cancelled_by_role"`
	StartTime       time.Time              `json:"start_time"`
}

// NewBookingCancelled creates a BookingCancelled event.
func NewBookingCancelled(b *Booking, cancelledBy uuid.UUID) *BookingCancelled {
	role := sharedDomain.RoleStudent
	if cancelledBy == b.TutorID() {
		role = sharedDomain.RoleTutor
	}
	return &BookingCancelled{
		BaseEvent:       sharedDomain.NewBaseEvent(b.ID(), BookingAggregateType, RoutingKeyBookingCancelled),
		TutorID:         b.TutorID(),
		StudentID:       b.StudentID(),
		CancelledBy:     cancelledBy,
		CancelledByRole: role,
		StartTime:       b.TimeRange().Start(),
	}
}

// BookingCompleted is emitted when the completion sweep closes a booking.
type BookingCompleted struct {
	sharedDomain.BaseEvent
	TutorID   uuid.UUID `json:"tutor_id"`
	StudentID uuid.UUID `json:"student_id"`
	EndTime   time.Time `json:"end_time"`
}

// NewBookingCompleted creates a BookingCompleted event.
func NewBookingCompleted(b *Booking) *BookingCompleted {
	return &BookingCompleted{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), BookingAggregateType, RoutingKeyBookingCompleted),
		TutorID:   b.TutorID(),
		StudentID: b.StudentID(),
		EndTime:   b.TimeRange().End(),
	}
}

// WindowAdded is emitted when an availability window is added.
type WindowAdded struct {
	sharedDomain.BaseEvent
	TutorID uuid.UUID  `json:"tutor_id"`
	Kind    WindowKind `json:"kind"`
	Blocked bool       `json:"blocked"`
}

// NewWindowAdded creates a WindowAdded event.
func NewWindowAdded(w *AvailabilityWindow) *WindowAdded {
	return &WindowAdded{
		BaseEvent: sharedDomain.NewBaseEvent(w.ID(), WindowAggregateType, RoutingKeyWindowAdded),
		TutorID:   w.TutorID(),
		Kind:      w.Kind(),
		Blocked:   w.IsBlocked(),
	}
}

// WindowRemoved is emitted when an availability window is removed.
type WindowRemoved struct {
	sharedDomain.BaseEvent
	TutorID uuid.UUID `json:"tutor_id"`
}

// NewWindowRemoved creates a WindowRemoved event.
func NewWindowRemoved(windowID, tutorID uuid.UUID) *WindowRemoved {
	return &WindowRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(windowID, WindowAggregateType, RoutingKeyWindowRemoved),
		TutorID:   tutorID,
	}
}
