package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// CancelExerciseCommand contains the data needed to withdraw an exercise
// request.
type CancelExerciseCommand struct {
	ExerciseID uuid.UUID
	ActorID    uuid.UUID
	Version    int64
}

// CancelExerciseHandler handles the CancelExerciseCommand.
type CancelExerciseHandler struct {
	exerciseRepo domain.ExerciseRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCancelExerciseHandler creates a new CancelExerciseHandler.
func NewCancelExerciseHandler(
	exerciseRepo domain.ExerciseRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CancelExerciseHandler {
	return &CancelExerciseHandler{
		exerciseRepo: exerciseRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the CancelExerciseCommand.
func (h *CancelExerciseHandler) Handle(ctx context.Context, cmd CancelExerciseCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		exercise, err := h.exerciseRepo.FindByID(txCtx, cmd.ExerciseID)
		if err != nil {
			return err
		}

		if err := exercise.Cancel(cmd.ActorID); err != nil {
			return err
		}

		if err := h.exerciseRepo.Update(txCtx, exercise, cmd.Version); err != nil {
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, exercise.DomainEvents(), cmd.ActorID); err != nil {
			return err
		}
		exercise.ClearDomainEvents()
		return nil
	})
}
