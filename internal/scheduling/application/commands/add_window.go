package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/scheduling/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// AddWindowCommand contains the data needed to add an availability window.
// Kind selects which field set applies.
type AddWindowCommand struct {
	TutorID uuid.UUID
	Kind    domain.WindowKind

	// Recurring rule fields.
	Weekday        time.Weekday
	LocalStart     string
	LocalEnd       string
	Timezone       string
	EffectiveFrom  time.Time
	EffectiveUntil *time.Time

	// One-off fields.
	Start   time.Time
	End     time.Time
	Blocked bool
}

// AddWindowResult contains the result of adding a window.
type AddWindowResult struct {
	WindowID uuid.UUID
}

// AddWindowHandler handles the AddWindowCommand.
type AddWindowHandler struct {
	availabilityRepo domain.AvailabilityRepository
	outboxRepo       outbox.Repository
	uow              sharedApplication.UnitOfWork
	cache            SlotCacheInvalidator
}

// NewAddWindowHandler creates a new AddWindowHandler.
func NewAddWindowHandler(
	availabilityRepo domain.AvailabilityRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	cache SlotCacheInvalidator,
) *AddWindowHandler {
	return &AddWindowHandler{
		availabilityRepo: availabilityRepo,
		outboxRepo:       outboxRepo,
		uow:              uow,
		cache:            cache,
	}
}

// Handle executes the AddWindowCommand.
func (h *AddWindowHandler) Handle(ctx context.Context, cmd AddWindowCommand) (*AddWindowResult, error) {
	window, err := buildWindow(cmd)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.availabilityRepo.Save(txCtx, window); err != nil {
			return err
		}

		event := domain.NewWindowAdded(window)
		return saveEvents(txCtx, h.outboxRepo, []sharedDomain.DomainEvent{event}, cmd.TutorID)
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		h.cache.Invalidate(ctx, cmd.TutorID)
	}

	return &AddWindowResult{WindowID: window.ID()}, nil
}

func buildWindow(cmd AddWindowCommand) (*domain.AvailabilityWindow, error) {
	switch cmd.Kind {
	case domain.WindowKindRecurring:
		return domain.NewRecurringWindow(cmd.TutorID, domain.RecurringRule{
			Weekday:        cmd.Weekday,
			LocalStart:     cmd.LocalStart,
			LocalEnd:       cmd.LocalEnd,
			Timezone:       cmd.Timezone,
			EffectiveFrom:  cmd.EffectiveFrom,
			EffectiveUntil: cmd.EffectiveUntil,
		})
	case domain.WindowKindOneOff:
		timeRange, err := domain.NewTimeRange(cmd.Start, cmd.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidWindow, err)
		}
		return domain.NewOneOffWindow(cmd.TutorID, timeRange, cmd.Blocked)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidWindow, cmd.Kind)
	}
}
