package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lektio/lektio/internal/exercises/domain"
)

func newRequest(t *testing.T, status domain.ExerciseStatus, tutorID *uuid.UUID, version int64) *domain.ExerciseRequest {
	t.Helper()
	now := time.Now().UTC()
	return domain.RehydrateExerciseRequest(
		uuid.New(), uuid.New(), tutorID, "Title", "math", 2500,
		status, "files/req.pdf", nil, now, nil, version, now, now,
	)
}

func TestAcceptExerciseHandler_Handle(t *testing.T) {
	t.Run("tutor claims a new request", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewAcceptExerciseHandler(exerciseRepo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		exercise := newRequest(t, domain.ExerciseStatusNew, nil, 0)
		tutorID := uuid.New()

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)
		exerciseRepo.On("Update", txCtx, exercise, int64(0)).Return(nil)
		outboxRepo.On("SaveBatch", txCtx, mock.AnythingOfType("[]*outbox.Message")).Return(nil)

		result, err := handler.Handle(ctx, AcceptExerciseCommand{
			ExerciseID: exercise.ID(),
			TutorID:    tutorID,
			Version:    0,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ExerciseStatusInProgress, result.Status)
		assert.Equal(t, int64(1), result.Version)
		require.NotNil(t, exercise.TutorID())
		assert.Equal(t, tutorID, *exercise.TutorID())

		exerciseRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("stale version loses the race", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewAcceptExerciseHandler(exerciseRepo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		exercise := newRequest(t, domain.ExerciseStatusNew, nil, 1)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)
		exerciseRepo.On("Update", txCtx, exercise, int64(0)).Return(domain.ErrVersionMismatch)

		_, err := handler.Handle(ctx, AcceptExerciseCommand{
			ExerciseID: exercise.ID(),
			TutorID:    uuid.New(),
			Version:    0,
		})

		assert.ErrorIs(t, err, domain.ErrVersionMismatch)
		outboxRepo.AssertNotCalled(t, "SaveBatch")
		uow.AssertExpectations(t)
	})

	t.Run("already claimed request rejects a second accept", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		uow := new(mockUnitOfWork)
		handler := NewAcceptExerciseHandler(exerciseRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		assignee := uuid.New()
		exercise := newRequest(t, domain.ExerciseStatusInProgress, &assignee, 1)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, exercise.ID()).Return(exercise, nil)

		_, err := handler.Handle(ctx, AcceptExerciseCommand{
			ExerciseID: exercise.ID(),
			TutorID:    uuid.New(),
			Version:    1,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		exerciseRepo.AssertNotCalled(t, "Update")
	})

	t.Run("unknown request", func(t *testing.T) {
		exerciseRepo := new(mockExerciseRepo)
		uow := new(mockUnitOfWork)
		handler := NewAcceptExerciseHandler(exerciseRepo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := context.WithValue(ctx, "tx", "transaction")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		exerciseRepo.On("FindByID", txCtx, mock.Anything).Return(nil, domain.ErrExerciseNotFound)

		_, err := handler.Handle(ctx, AcceptExerciseCommand{
			ExerciseID: uuid.New(),
			TutorID:    uuid.New(),
		})

		assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	})
}
