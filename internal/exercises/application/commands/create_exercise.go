// Package commands contains the write operations of the exercise
// marketplace.
package commands

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
	sharedApplication "github.com/lektio/lektio/internal/shared/application"
	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
	"github.com/lektio/lektio/internal/shared/infrastructure/outbox"
)

// CreateExerciseCommand contains the data needed to submit an exercise request.
type CreateExerciseCommand struct {
	StudentID      uuid.UUID
	Title          string
	Subject        string
	PriceCents     int64
	RequestFileRef string
}

// CreateExerciseResult contains the result of submitting an exercise request.
type CreateExerciseResult struct {
	ExerciseID uuid.UUID
	Status     domain.ExerciseStatus
	Version    int64
}

// CreateExerciseHandler handles the CreateExerciseCommand.
type CreateExerciseHandler struct {
	exerciseRepo domain.ExerciseRepository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateExerciseHandler creates a new CreateExerciseHandler.
func NewCreateExerciseHandler(
	exerciseRepo domain.ExerciseRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreateExerciseHandler {
	return &CreateExerciseHandler{
		exerciseRepo: exerciseRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the CreateExerciseCommand.
func (h *CreateExerciseHandler) Handle(ctx context.Context, cmd CreateExerciseCommand) (*CreateExerciseResult, error) {
	exercise, err := domain.NewExerciseRequest(cmd.StudentID, cmd.Title, cmd.Subject, cmd.PriceCents, cmd.RequestFileRef)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.exerciseRepo.Save(txCtx, exercise); err != nil {
			return err
		}
		if err := saveEvents(txCtx, h.outboxRepo, exercise.DomainEvents(), cmd.StudentID); err != nil {
			return err
		}
		exercise.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateExerciseResult{
		ExerciseID: exercise.ID(),
		Status:     exercise.Status(),
		Version:    exercise.Version(),
	}, nil
}

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
