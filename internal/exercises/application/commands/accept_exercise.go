package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// AcceptExerciseCommand contains the data needed to claim an exercise
// request. Version is the version the tutor saw when deciding to accept;
// a stale value means someone else claimed the request first.
type AcceptExerciseCommand struct {
	ExerciseID uuid.UUID
	TutorID    uuid.UUID
	Version    int64
}

// AcceptExerciseResult contains the result of a claim.
type AcceptExerciseResult struct {
	ExerciseID uuid.UUID
	Status     domain.ExerciseStatus
	Version    int64
}

// AcceptExerciseHandler handles the AcceptExerciseCommand.
type AcceptExerciseHandler struct {
	exerciseRepo domain.ExerciseRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewAcceptExerciseHandler creates a new AcceptExerciseHandler.
func NewAcceptExerciseHandler(
	exerciseRepo domain.ExerciseRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *AcceptExerciseHandler {
	return &AcceptExerciseHandler{
		exerciseRepo: exerciseRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the AcceptExerciseCommand. A lost race surfaces as
// ErrVersionMismatch from the repository's compare-and-swap; it is not
// retried because the request now belongs to another tutor.
func (h *AcceptExerciseHandler) Handle(ctx context.Context, cmd AcceptExerciseCommand) (*AcceptExerciseResult, error) {
	var result *AcceptExerciseResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		exercise, err := h.exerciseRepo.FindByID(txCtx, cmd.ExerciseID)
		if err != nil {
			return err
		}

		if err := exercise.Accept(cmd.TutorID); err != nil {
			return err
		}

		if err := h.exerciseRepo.Update(txCtx, exercise, cmd.Version); err != nil {
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, exercise.DomainEvents(), cmd.TutorID); err != nil {
			return err
		}
		exercise.ClearDomainEvents()

		result = &AcceptExerciseResult{
			ExerciseID: exercise.ID(),
			Status:     exercise.Status(),
			Version:    cmd.Version + 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
