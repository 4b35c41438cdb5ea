package domain

import (
	"context"

	"github.com/google/uuid"
)

// ExerciseRepository persists exercise requests. Mutations after creation go
// through Update, which performs a compare-and-swap on the stored version:
// the row's version is incremented only when it still matches the expected
// one, otherwise ErrVersionMismatch is returned. This serializes competing
// accepts so exactly one tutor wins.
type ExerciseRepository interface {
	// Save inserts a new exercise request.
	Save(ctx context.Context, exercise *ExerciseRequest) error

	// Update persists the aggregate's current state when the stored version
	// matches expectedVersion, incrementing it.
	Update(ctx context.Context, exercise *ExerciseRequest, expectedVersion int64) error

	// FindByID retrieves an exercise request by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ExerciseRequest, error)

	// ListByStudent returns a student's requests, newest first.
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*ExerciseRequest, error)

	// ListByTutor returns the requests assigned to a tutor, newest first.
	ListByTutor(ctx context.Context, tutorID uuid.UUID) ([]*ExerciseRequest, error)

	// ListOpen returns unassigned new requests for tutors to browse, oldest
	// first, optionally filtered by subject.
	ListOpen(ctx context.Context, subject string, limit int) ([]*ExerciseRequest, error)
}
