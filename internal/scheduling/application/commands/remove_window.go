package commands

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// RemoveWindowCommand contains the data needed to remove an availability
// window. Removing a window that no longer exists succeeds; removal is
// idempotent.
type RemoveWindowCommand struct {
	WindowID uuid.UUID
	TutorID  uuid.UUID
}

// RemoveWindowHandler handles the RemoveWindowCommand.
type RemoveWindowHandler struct {
	availabilityRepo domain.AvailabilityRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
	cache            SlotCacheInvalidator
}

// NewRemoveWindowHandler creates a new RemoveWindowHandler.
func NewRemoveWindowHandler(
	availabilityRepo domain.AvailabilityRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache SlotCacheInvalidator,
) *RemoveWindowHandler {
	return &RemoveWindowHandler{
		availabilityRepo: availabilityRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
		cache:            cache,
	}
}

// Handle executes the RemoveWindowCommand.
func (h *RemoveWindowHandler) Handle(ctx context.Context, cmd RemoveWindowCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		window, err := h.availabilityRepo.FindByID(txCtx, cmd.WindowID)
		if err != nil {
			if errors.Is(err, domain.ErrWindowNotFound) {
				return nil
			}
			return err
		}

		if window.TutorID() != cmd.TutorID {
			return domain.ErrForbidden
		}

		if err := h.availabilityRepo.Delete(txCtx, cmd.WindowID); err != nil {
			return err
		}

		event := domain.NewWindowRemoved(cmd.WindowID, cmd.TutorID)
		return saveEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{event}, cmd.TutorID)
	})
	if err != nil {
		return err
	}

	if h.cache != nil {
		h.cache.Invalidate(ctx, cmd.TutorID)
	}
	return nil
}
