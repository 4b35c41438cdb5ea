package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

const (
	ExerciseAggregateType = "ExerciseRequest"

	RoutingKeyExerciseCreated   = "exercises.request.created"
	RoutingKeyExerciseAccepted  = "exercises.request.accepted"
	RoutingKeySolutionSubmitted = "exercises.request.solution_submitted"
	RoutingKeyExerciseCancelled = "exercises.request.cancelled"
)

// ExerciseCreated is emitted when a student submits a new exercise request.
type ExerciseCreated struct {
	sharedDomain.BaseEvent
	StudentID  uuid.UUID `json:"student_id"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	PriceCents int64     `json:"price_cents"`
}

// NewExerciseCreated creates an ExerciseCreated event.
func NewExerciseCreated(e *ExerciseRequest) *ExerciseCreated {
	return &ExerciseCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(e.ID(), ExerciseAggregateType, RoutingKeyExerciseCreated),
		StudentID:  e.StudentID(),
		Title:      e.Title(),
		Subject:    e.Subject(),
		PriceCents: e.PriceCents(),
	}
}

// ExerciseAccepted is emitted when a tutor wins the claim on a request.
type ExerciseAccepted struct {
	sharedDomain.BaseEvent
	StudentID uuid.UUID `json:"student_id"`
	TutorID   uuid.UUID `json:"tutor_id"`
}

// NewExerciseAccepted creates an ExerciseAccepted event.
func NewExerciseAccepted(e *ExerciseRequest, tutorID uuid.UUID) *ExerciseAccepted {
	return &ExerciseAccepted{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), ExerciseAggregateType, RoutingKeyExerciseAccepted),
		StudentID: e.StudentID(),
		TutorID:   tutorID,
	}
}

// SolutionSubmitted is emitted when the assigned tutor delivers a solution.
type SolutionSubmitted struct {
	sharedDomain.BaseEvent
	StudentID       uuid.UUID `json:"student_id"`
	TutorID         uuid.UUID `json:"tutor_id"`
	SolutionFileRef string    `json:"solution_file_ref"`
	SolvedAt        time.Time `json:"solved_at"`
}

// NewSolutionSubmitted creates a SolutionSubmitted event.
func NewSolutionSubmitted(e *ExerciseRequest, tutorID uuid.UUID) *SolutionSubmitted {
	event := &SolutionSubmitted{
		BaseEvent: sharedDomain.NewBaseEvent(e.ID(), ExerciseAggregateType, RoutingKeySolutionSubmitted),
		StudentID: e.StudentID(),
		TutorID:   tutorID,
	}
	if e.SolutionFileRef() != nil {
		event.SolutionFileRef = *e.SolutionFileRef()
	}
	if e.SolvedAt() != nil {
		event.SolvedAt = *e.SolvedAt()
	}
	return event
}

// ExerciseCancelled is emitted when a participant withdraws a request.
type ExerciseCancelled struct {
	sharedDomain.BaseEvent
	StudentID       uuid.UUID              `json:"student_id"`
	CancelledBy     uuid.UUID              `json:"cancelled_by"`
	CancelledByRole sharedDomain.ActorRole `json:"cancelled_by_role"`
}

// NewExerciseCancelled creates an ExerciseCancelled event.
func NewExerciseCancelled(e *ExerciseRequest, cancelledBy uuid.UUID) *ExerciseCancelled {
	role := sharedDomain.RoleStudent
	if e.TutorID() != nil && cancelledBy == *e.TutorID() {
		role = sharedDomain.RoleTutor
	}
	return &ExerciseCancelled{
		BaseEvent:       sharedDomain.NewBaseEvent(e.ID(), ExerciseAggregateType, RoutingKeyExerciseCancelled),
		StudentID:       e.StudentID(),
		CancelledBy:     cancelledBy,
		CancelledByRole: role,
	}
}
