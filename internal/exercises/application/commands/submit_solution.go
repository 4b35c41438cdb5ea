package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// SubmitSolutionCommand contains the data needed to deliver a solution.
type SubmitSolutionCommand struct {
	ExerciseID      uuid.UUID
	TutorID         uuid.UUID
	SolutionFileRef string
	Version         int64
}

// SubmitSolutionHandler handles the SubmitSolutionCommand.
type SubmitSolutionHandler struct {
	exerciseRepo domain.ExerciseRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewSubmitSolutionHandler creates a new SubmitSolutionHandler.
func NewSubmitSolutionHandler(
	exerciseRepo domain.ExerciseRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *SubmitSolutionHandler {
	return &SubmitSolutionHandler{
		exerciseRepo: exerciseRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the SubmitSolutionCommand.
func (h *SubmitSolutionHandler) Handle(ctx context.Context, cmd SubmitSolutionCommand) error {
	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		exercise, err := h.exerciseRepo.FindByID(txCtx, cmd.ExerciseID)
		if err != nil {
			return err
		}

		if err := exercise.SubmitSolution(cmd.TutorID, cmd.SolutionFileRef); err != nil {
			return err
		}

		if err := h.exerciseRepo.Update(txCtx, exercise, cmd.Version); err != nil {
			return err
		}

		if err := saveEvents(txCtx, h.outboxRepo, exercise.DomainEvents(), cmd.TutorID); err != nil {
			return err
		}
		exercise.ClearDomainEvents()
		return nil
	})
}
