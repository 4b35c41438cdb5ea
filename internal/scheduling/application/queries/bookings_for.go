package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

// BookingsForQuery requests a tutor's scheduled bookings overlapping a range.
type BookingsForQuery struct {
	TutorID uuid.UUID
	From    time.Time
	To      time.Time
}

// BookingDTO is the read model for a booking.
type BookingDTO struct {
	ID        uuid.UUID            `json:"id"`
	TutorID   uuid.UUID            `json:"tutor_id"`
	StudentID uuid.UUID            `json:"student_id"`
	Start     time.Time            `json:"start"`
	End       time.Time            `json:"end"`
	Status    domain.BookingStatus `json:"status"`
	Version   int64                `json:"version"`
}

// BookingsForHandler handles the BookingsForQuery.
type BookingsForHandler struct {
	bookingRepo domain.BookingRepository
}

// NewBookingsForHandler creates a new BookingsForHandler.
func NewBookingsForHandler(bookingRepo domain.BookingRepository) *BookingsForHandler {
	return &BookingsForHandler{bookingRepo: bookingRepo}
}

// Handle executes the BookingsForQuery.
func (h *BookingsForHandler) Handle(ctx context.Context, query BookingsForQuery) ([]BookingDTO, error) {
	timeRange, err := domain.NewTimeRange(query.From, query.To)
	if err != nil {
		return nil, err
	}

	bookings, err := h.bookingRepo.BookingsFor(ctx, query.TutorID, timeRange)
	if err != nil {
		return nil, err
	}

	out := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingDTO(b))
	}
	return out, nil
}

func toBookingDTO(b *domain.Booking) BookingDTO {
	return BookingDTO{
		ID:        b.ID(),
		TutorID:   b.TutorID(),
		StudentID: b.StudentID(),
		Start:     b.TimeRange().Start(),
		End:       b.TimeRange().End(),
		Status:    b.Status(),
		Version:   b.Version(),
	}
}
