package commands

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// SlotCacheInvalidator drops cached free slots for a tutor after a write.
// Implementations must be safe to skip; handlers tolerate a nil invalidator.
type SlotCacheInvalidator interface {
	Invalidate(ctx context.Context, tutorID uuid.UUID)
}

// RequestBookingCommand contains the data needed to request a booking.
type RequestBookingCommand struct {
	TutorID   uuid.UUID
	StudentID uuid.UUID
	Start     time.Time
	End       time.Time
}

// RequestBookingResult contains the result of a booking request.
type RequestBookingResult struct {
	BookingID uuid.UUID
	Status    domain.BookingStatus
	Version   int64
}

// RequestBookingHandler handles the RequestBookingCommand. The availability
// and overlap checks are advisory; the ledger's atomic append is what
// actually prevents double-booking, and a lost race is reported as
// ErrSlotTaken without retrying.
type RequestBookingHandler struct {
	availabilityRepo domain.AvailabilityRepository
	bookingRepo      domain.BookingRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
	cache            SlotCacheInvalidator
}

// NewRequestBookingHandler creates a new RequestBookingHandler.
func NewRequestBookingHandler(
	availabilityRepo domain.AvailabilityRepository,
	bookingRepo domain.BookingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache SlotCacheInvalidator,
) *RequestBookingHandler {
	return &RequestBookingHandler{
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
		cache:            cache,
	}
}

// Handle executes the RequestBookingCommand.
func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	requested, err := domain.NewTimeRange(cmd.Start, cmd.End)
	if err != nil {
		return nil, err
	}

	var result *RequestBookingResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		windows, err := h.availabilityRepo.ListByTutor(txCtx, cmd.TutorID)
		if err != nil {
			return err
		}

		if !containedInFreeSlots(windows, requested) {
			return domain.ErrOutsideAvailability
		}

		existing, err := h.bookingRepo.BookingsFor(txCtx, cmd.TutorID, requested)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return domain.ErrSlotTaken
		}

		booking, err := domain.NewBooking(cmd.TutorID, cmd.StudentID, requested)
		if err != nil {
			return err
		}

		if err := h.bookingRepo.Append(txCtx, booking); err != nil {
			// A concurrent writer won the slot between our check and the
			// insert. Surfaced as a slot-taken rejection; the caller decides
			// whether to pick another time.
			if errors.Is(err, domain.ErrStorageConflict) {
				return domain.ErrSlotTaken
			}
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, booking.DomainEvents(), cmd.StudentID); err != nil {
			return err
		}
		booking.ClearDomainEvents()

		result = &RequestBookingResult{
			BookingID: booking.ID(),
			Status:    booking.Status(),
			Version:   booking.Version(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Invalidate(ctx, cmd.TutorID)
	}

	return result, nil
}

// containedInFreeSlots reports whether the requested range lies entirely
// within one computed free slot.
func containedInFreeSlots(windows []*domain.AvailabilityWindow, requested domain.TimeRange) bool {
	for _, slot := range domain.FreeSlots(windows, requested) {
		if slot.Contains(requested) {
			return true
		}
	}
	return false
}

// saveEvents stamps actor metadata on the events and stages them in the
// outbox within the current transaction.
func saveEvents(ctx context.Context, repo outbox.Repository, events []sharedDomain.DomainEvent, actorID uuid.UUID) error {
	if len(events) == 0 {
		return nil
	}

	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(actorID))

	msgs, err := outbox.MessagesFromEvents(events)
	if err != nil {
		return err
	}
	return repo.SaveBatch(ctx, msgs)
}
