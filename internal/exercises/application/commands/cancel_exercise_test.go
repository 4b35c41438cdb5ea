package commands

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/exercises/domain"
)

func TestCancelExerciseHandler_Handle(t *testing.T) {
	t.Run("student withdraws a new request", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewCancelExerciseHandler(exerciseRepo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		exercise := newRequest(t, domain.ExerciseStatusNew, nil, 0)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)
		exerciseRepo.On("Update", txCtx, exercise, int64(0)).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		err := handler.Handle(ctx, CancelExerciseCommand{
			ExerciseID: exercise.ID(),
			ActorID:    exercise.StudentID(),
			Version:    0,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ExerciseStatusCancelled, exercise.Status())
		uow.AssertExpectations(t)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		uow := new(mockUnitOfWork)
		handler := NewCancelExerciseHandler(exerciseRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		exercise := newRequest(t, domain.ExerciseStatusNew, nil, 0)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)

		err := handler.Handle(ctx, CancelExerciseCommand{
			ExerciseID: exercise.ID(),
			ActorID:    uuid.New(),
			Version:    0,
		})

		assert.ErrorIs(t, err, domain.ErrForbidden)
		exerciseRepo.AssertNotCalled(t, "Update")
	})

	t.Run("solved request cannot be withdrawn", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		uow := new(mockUnitOfWork)
		handler := NewCancelExerciseHandler(exerciseRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		assignee := uuid.New()
		exercise := newRequest(t, domain.ExerciseStatusSolved, &assignee, 2)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)

		err := handler.Handle(ctx, CancelExerciseCommand{
			ExerciseID: exercise.ID(),
			ActorID:    exercise.StudentID(),
			Version:    2,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("unknown request", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		uow := new(mockUnitOfWork)
		handler := NewCancelExerciseHandler(exerciseRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, mock.Anything).Return(nil, domain.ErrExerciseNotFound)

		err := handler.Handle(ctx, CancelExerciseCommand{
			ExerciseID: uuid.New(),
			ActorID:    uuid.New(),
		})

		assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	})
}
