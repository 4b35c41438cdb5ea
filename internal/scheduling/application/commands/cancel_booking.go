package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// CancelBookingCommand contains the data needed to cancel a booking. Version
// is the token the caller read; a stale token is rejected.
type CancelBookingCommand struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
	Version   int64
}

// CancelBookingHandler handles the CancelBookingCommand.
type CancelBookingHandler struct {
	bookingRepo domain.BookingRepository
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	cache       SlotCacheInvalidator
}

// NewCancelBookingHandler creates a new CancelBookingHandler.
func NewCancelBookingHandler(
	bookingRepo domain.BookingRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache SlotCacheInvalidator,
) *CancelBookingHandler {
	return &CancelBookingHandler{
		bookingRepo: bookingRepo,
		outboxRepo:  outboxRepo,
		uow:         uow,
		cache:       cache,
	}
}

// Handle executes the CancelBookingCommand.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) error {
	var tutorID uuid.UUID

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		booking, err := h.bookingRepo.FindByID(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}

		// A stale version token is rejected before any state check, so a
		// cancel that raced with another write always reads as "re-fetch
		// and retry", even when the booking is already terminal.
		if cmd.Version != booking.Version() {
			return domain.ErrVersionMismatch
		}

		if err := booking.Cancel(cmd.ActorID, time.Now().UTC()); err != nil {
			return err
		}

		// The compare-and-swap re-checks the caller's version inside the
		// transaction in case another write slipped in after FindByID.
		if err := h.bookingRepo.Transition(txCtx, cmd.BookingID, cmd.Version, domain.BookingStatusCancelled); err != nil {
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, booking.DomainEvents(), cmd.ActorID); err != nil {
			return err
		}

		tutorID = booking.TutorID()
		return nil
	})
	if err != nil {
		return err
	}

	if h.cache != nil {
		h.cache.Invalidate(ctx, tutorID)
	}
	return nil
}
