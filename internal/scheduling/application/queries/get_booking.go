package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

// GetBookingQuery requests a single booking by ID.
type GetBookingQuery struct {
	BookingID uuid.UUID
}

// GetBookingHandler handles the GetBookingQuery.
type GetBookingHandler struct {
	bookingRepo domain.BookingRepository
}

// NewGetBookingHandler creates a new GetBookingHandler.
func NewGetBookingHandler(bookingRepo domain.BookingRepository) *GetBookingHandler {
	return &GetBookingHandler{bookingRepo: bookingRepo}
}

// Handle executes the GetBookingQuery.
func (h *GetBookingHandler) Handle(ctx context.Context, query GetBookingQuery) (*BookingDTO, error) {
	booking, err := h.bookingRepo.FindByID(ctx, query.BookingID)
	if err != nil {
		return nil, err
	}

	dto := toBookingDTO(booking)
	return &dto, nil
}
