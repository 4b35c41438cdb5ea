// Package domain contains the exercise marketplace model: students submit
// exercise requests with an offered price, tutors claim them and deliver
// solutions. Claiming is guarded by optimistic concurrency so a request
// ends up with exactly one tutor.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/lektio/lektio/internal/shared/domain"
)

// ExerciseStatus represents the lifecycle state of an exercise request.
type ExerciseStatus string

const (
	ExerciseStatusNew        ExerciseStatus = "new"
	ExerciseStatusInProgress ExerciseStatus = "in_progress"
	ExerciseStatusSolved     ExerciseStatus = "solved"
	ExerciseStatusCancelled  ExerciseStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s ExerciseStatus) IsTerminal() bool {
	return s == ExerciseStatusSolved || s == ExerciseStatusCancelled
}

// IsValid reports whether the status is a known lifecycle state.
func (s ExerciseStatus) IsValid() bool {
	return s == ExerciseStatusNew || s == ExerciseStatusInProgress || s.IsTerminal()
}

func (s ExerciseStatus) String() string { return string(s) }

// ExerciseRequest is a student's paid request for a worked solution. It is
// created unassigned; the first tutor whose accept wins the version race
// becomes the single assignee.
type ExerciseRequest struct {
	sharedDomain.BaseAggregateRoot
	studentID       uuid.UUID
	tutorID         *uuid.UUID
	title           string
	subject         string
	priceCents      int64
	status          ExerciseStatus
	requestFileRef  string
	solutionFileRef *string
	submittedAt     time.Time
	solvedAt        *time.Time
}

// NewExerciseRequest creates a new unassigned exercise request.
func NewExerciseRequest(studentID uuid.UUID, title, subject string, priceCents int64, requestFileRef string) (*ExerciseRequest, error) {
	if studentID == uuid.Nil {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidExercise)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidExercise)
	}
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidExercise)
	}
	if priceCents <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidExercise)
	}
	if strings.TrimSpace(requestFileRef) == "" {
		return nil, fmt.Errorf("%w: request file reference is required", ErrInvalidExercise)
	}

	exercise := &ExerciseRequest{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		studentID:         studentID,
		title:             title,
		subject:           subject,
		priceCents:        priceCents,
		status:            ExerciseStatusNew,
		requestFileRef:    requestFileRef,
		submittedAt:       time.Now().UTC(),
	}
	exercise.AddDomainEvent(NewExerciseCreated(exercise))
	return exercise, nil
}

func (e *ExerciseRequest) StudentID() uuid.UUID     { return e.studentID }
func (e *ExerciseRequest) TutorID() *uuid.UUID      { return e.tutorID }
func (e *ExerciseRequest) Title() string            { return e.title }
func (e *ExerciseRequest) Subject() string          { return e.subject }
func (e *ExerciseRequest) PriceCents() int64        { return e.priceCents }
func (e *ExerciseRequest) Status() ExerciseStatus   { return e.status }
func (e *ExerciseRequest) RequestFileRef() string   { return e.requestFileRef }
func (e *ExerciseRequest) SolutionFileRef() *string { return e.solutionFileRef }
func (e *ExerciseRequest) SubmittedAt() time.Time   { return e.submittedAt }
func (e *ExerciseRequest) SolvedAt() *time.Time     { return e.solvedAt }

// Accept assigns the request to a tutor. Only a new, unassigned request can
// be accepted.
func (e *ExerciseRequest) Accept(tutorID uuid.UUID) error {
	if tutorID == uuid.Nil {
		return fmt.Errorf("%w: tutor id is required", ErrInvalidExercise)
	}
	if e.status != ExerciseStatusNew {
		return fmt.Errorf("%w: cannot accept a %s request", ErrInvalidTransition, e.status)
	}

	e.tutorID = &tutorID
	e.status = ExerciseStatusInProgress
	e.Touch()
	e.AddDomainEvent(NewExerciseAccepted(e, tutorID))
	return nil
}

// SubmitSolution records the solution file and marks the request solved.
// Only the assigned tutor may submit.
func (e *ExerciseRequest) SubmitSolution(tutorID uuid.UUID, solutionFileRef string) error {
	if strings.TrimSpace(solutionFileRef) == "" {
		return fmt.Errorf("%w: solution file reference is required", ErrInvalidExercise)
	}
	if e.status != ExerciseStatusInProgress {
		return fmt.Errorf("%w: cannot solve a %s request", ErrInvalidTransition, e.status)
	}
	if e.tutorID == nil || *e.tutorID != tutorID {
		return ErrForbidden
	}

	now := time.Now().UTC()
	e.solutionFileRef = &solutionFileRef
	e.solvedAt = &now
	e.status = ExerciseStatusSolved
	e.Touch()
	e.AddDomainEvent(NewSolutionSubmitted(e, tutorID))
	return nil
}

// Cancel withdraws the request. The student can cancel while it is new or in
// progress; the assigned tutor can abandon an in-progress request, which
// also cancels it.
func (e *ExerciseRequest) Cancel(actorID uuid.UUID) error {
	if e.status.IsTerminal() {
		return fmt.Errorf("%w: cannot cancel a %s request", ErrInvalidTransition, e.status)
	}
	if !e.isParticipant(actorID) {
		return ErrForbidden
	}

	e.status = ExerciseStatusCancelled
	e.Touch()
	e.AddDomainEvent(NewExerciseCancelled(e, actorID))
	return nil
}

func (e *ExerciseRequest) isParticipant(actorID uuid.UUID) bool {
	if actorID == e.studentID {
		return true
	}
	return e.tutorID != nil && *e.tutorID == actorID
}

// RehydrateExerciseRequest recreates an exercise request from persisted state.
func RehydrateExerciseRequest(
	id uuid.UUID,
	studentID uuid.UUID,
	tutorID *uuid.UUID,
	title, subject string,
	priceCents int64,
	status ExerciseStatus,
	requestFileRef string,
	solutionFileRef *string,
	submittedAt time.Time,
	solvedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *ExerciseRequest {
	return &ExerciseRequest{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), version),
		studentID:       studentID,
		tutorID:         tutorID,
		title:           title,
		subject:         subject,
		priceCents:      priceCents,
		status:          status,
		requestFileRef:  requestFileRef,
		solutionFileRef: solutionFileRef,
		submittedAt:     submittedAt,
		solvedAt:        solvedAt,
	}
}
