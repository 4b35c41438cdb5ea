// Package queries contains the read operations of the exercise marketplace.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lektio/lektio/internal/exercises/domain"
)

// ExerciseDTO is the read model of an exercise request.
type ExerciseDTO struct {
	ID              uuid.UUID  `json:"id"`
	StudentID       uuid.UUID  `json:"student_id"`
	TutorID         *uuid.UUID `json:"tutor_id,omitempty"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	PriceCents      int64      `json:"price_cents"`
	Status          string     `json:"status"`
	RequestFileRef  string     `json:"request_file_ref"`
	SolutionFileRef *string    `json:"solution_file_ref,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	SolvedAt        *time.Time `json:"solved_at,omitempty"`
	Version         int64      `json:"version"`
}

func toExerciseDTO(e *domain.ExerciseRequest) ExerciseDTO {
	return ExerciseDTO{
		ID:              e.ID(),
		StudentID:       e.StudentID(),
		TutorID:         e.TutorID(),
		Title:           e.Title(),
		Subject:         e.Subject(),
		PriceCents:      e.PriceCents(),
		Status:          e.Status().String(),
		RequestFileRef:  e.RequestFileRef(),
		SolutionFileRef: e.SolutionFileRef(),
		SubmittedAt:     e.SubmittedAt(),
		SolvedAt:        e.SolvedAt(),
		Version:         e.Version(),
	}
}

func toExerciseDTOs(exercises []*domain.ExerciseRequest) []ExerciseDTO {
	dtos := make([]ExerciseDTO, 0, len(exercises))
	for _, e := range exercises {
		dtos = append(dtos, toExerciseDTO(e))
	}
	return dtos
}

// ExercisesForStudentQuery requests a student's exercise requests.
type ExercisesForStudentQuery struct {
	StudentID uuid.UUID
}

// ExercisesForStudentHandler handles the ExercisesForStudentQuery.
type ExercisesForStudentHandler struct {
	exerciseRepo domain.ExerciseRepository
}

// NewExercisesForStudentHandler creates a new ExercisesForStudentHandler.
func NewExercisesForStudentHandler(exerciseRepo domain.ExerciseRepository) *ExercisesForStudentHandler {
	return &ExercisesForStudentHandler{exerciseRepo: exerciseRepo}
}

// Handle executes the ExercisesForStudentQuery.
func (h *ExercisesForStudentHandler) Handle(ctx context.Context, query ExercisesForStudentQuery) ([]ExerciseDTO, error) {
	exercises, err := h.exerciseRepo.ListByStudent(ctx, query.StudentID)
	if err != nil {
		return nil, err
	}
	return toExerciseDTOs(exercises), nil
}

// ExercisesForTutorQuery requests the exercises assigned to a tutor.
type ExercisesForTutorQuery struct {
	TutorID uuid.UUID
}

// ExercisesForTutorHandler handles the ExercisesForTutorQuery.
type ExercisesForTutorHandler struct {
	exerciseRepo domain.ExerciseRepository
}

// NewExercisesForTutorHandler creates a new ExercisesForTutorHandler.
func NewExercisesForTutorHandler(exerciseRepo domain.ExerciseRepository) *ExercisesForTutorHandler {
	return &ExercisesForTutorHandler{exerciseRepo: exerciseRepo}
}

// Handle executes the ExercisesForTutorQuery.
func (h *ExercisesForTutorHandler) Handle(ctx context.Context, query ExercisesForTutorQuery) ([]ExerciseDTO, error) {
	exercises, err := h.exerciseRepo.ListByTutor(ctx, query.TutorID)
	if err != nil {
		return nil, err
	}
	return toExerciseDTOs(exercises), nil
}

// OpenExercisesQuery requests unclaimed exercise requests for browsing,
// optionally filtered by subject.
type OpenExercisesQuery struct {
	Subject string
	Limit   int
}

// DefaultOpenExercisesLimit bounds a browse request that does not specify
// its own limit.
const DefaultOpenExercisesLimit = 50

// OpenExercisesHandler handles the OpenExercisesQuery.
type OpenExercisesHandler struct {
	exerciseRepo domain.ExerciseRepository
}

// NewOpenExercisesHandler creates a new OpenExercisesHandler.
func NewOpenExercisesHandler(exerciseRepo domain.ExerciseRepository) *OpenExercisesHandler {
	return &OpenExercisesHandler{exerciseRepo: exerciseRepo}
}

// Handle executes the OpenExercisesQuery.
func (h *OpenExercisesHandler) Handle(ctx context.Context, query OpenExercisesQuery) ([]ExerciseDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultOpenExercisesLimit
	}

	exercises, err := h.exerciseRepo.ListOpen(ctx, query.Subject, limit)
	if err != nil {
		return nil, err
	}
	return toExerciseDTOs(exercises), nil
}
