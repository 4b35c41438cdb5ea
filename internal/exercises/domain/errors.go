package domain

import "errors"

var (
	// ErrInvalidExercise is returned when an exercise request fails validation.
	ErrInvalidExercise = errors.New("invalid exercise request")

	// ErrInvalidTransition is returned when the requested status change is not
	// allowed from the current status.
	ErrInvalidTransition = errors.New("invalid exercise transition")

	// ErrVersionMismatch is returned when an update carries a stale version
	// token, for example when two tutors race to accept the same request.
	ErrVersionMismatch = errors.New("exercise request was modified by another process")

	// ErrForbidden is returned when the acting party may not perform the
	// operation on this exercise request.
	ErrForbidden = errors.New("actor is not allowed to perform this action")

	// ErrExerciseNotFound is returned when an exercise request does not exist.
	ErrExerciseNotFound = errors.New("exercise request not found")
)
