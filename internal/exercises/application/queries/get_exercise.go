package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
)

// GetExerciseQuery requests a single exercise request by ID.
type GetExerciseQuery struct {
	ExerciseID uuid.UUID
}

// GetExerciseHandler handles the GetExerciseQuery.
type GetExerciseHandler struct {
	exerciseRepo domain.ExerciseRepository
}

// NewGetExerciseHandler creates a new GetExerciseHandler.
func NewGetExerciseHandler(exerciseRepo domain.ExerciseRepository) *GetExerciseHandler {
	return &GetExerciseHandler{exerciseRepo: exerciseRepo}
}

// Handle executes the GetExerciseQuery.
func (h *GetExerciseHandler) Handle(ctx context.Context, query GetExerciseQuery) (*ExerciseDTO, error) {
	exercise, err := h.exerciseRepo.FindByID(ctx, query.ExerciseID)
	if err != nil {
		return nil, err
	}

	dto := toExerciseDTO(exercise)
	return &dto, nil
}
