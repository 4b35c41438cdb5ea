package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
)

// SlotCache caches computed free slots per tutor and horizon. A miss returns
// ok=false; both operations are best-effort and must never fail the query.
type SlotCache interface {
	Get(ctx context.Context, tutorID uuid.UUID, horizon domain.TimeRange) ([]domain.TimeRange, bool)
	Set(ctx context.Context, tutorID uuid.UUID, horizon domain.TimeRange, slots []domain.TimeRange)
}

// FreeSlotsQuery requests a tutor's bookable slots within a horizon.
type FreeSlotsQuery struct {
	TutorID uuid.UUID
	From    time.Time
	To      time.Time
}

// Slot is a read-model row for one free slot.
type Slot struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

// FreeSlotsHandler handles the FreeSlotsQuery. Slots are advisory for
// presentation; the booking path re-validates against the ledger.
type FreeSlotsHandler struct {
	availabilityRepo domain.AvailabilityRepository
	cache            SlotCache
}

// NewFreeSlotsHandler creates a new FreeSlotsHandler. The cache may be nil.
func NewFreeSlotsHandler(availabilityRepo domain.AvailabilityRepository, cache SlotCache) *FreeSlotsHandler {
	return &FreeSlotsHandler{
		availabilityRepo: availabilityRepo,
		cache:            cache,
	}
}

// Handle executes the FreeSlotsQuery.
func (h *FreeSlotsHandler) Handle(ctx context.Context, query FreeSlotsQuery) ([]Slot, error) {
	horizon, err := domain.NewTimeRange(query.From, query.To)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if slots, ok := h.cache.Get(ctx, query.TutorID, horizon); ok {
			return toSlotDTOs(slots), nil
		}
	}

	windows, err := h.availabilityRepo.ListByTutor(ctx, query.TutorID)
	if err != nil {
		return nil, err
	}

	slots := domain.FreeSlots(windows, horizon)

	if h.cache != nil {
		h.cache.Set(ctx, query.TutorID, horizon, slots)
	}

	return toSlotDTOs(slots), nil
}

func toSlotDTOs(slots []domain.TimeRange) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		out = append(out, Slot{
			Start:           s.Start(),
			End:             s.End(),
			DurationMinutes: s.DurationMinutes(),
		})
	}
	return out
}
