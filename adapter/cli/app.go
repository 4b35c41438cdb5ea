package cli

import (
	"github.com/google/uuid"
	exerciseCommands "github.com/lektio/lektio/internal/exercises/application/commands"
	exerciseQueries "github.com/lektio/lektio/internal/exercises/application/queries"
	scheduleCommands "github.com/lektio/lektio/internal/scheduling/application/commands"
	scheduleQueries "github.com/lektio/lektio/internal/scheduling/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Availability Command Handlers
	AddWindowHandler    *scheduleCommands.AddWindowHandler
	RemoveWindowHandler *scheduleCommands.RemoveWindowHandler

	// Booking Command Handlers
	RequestBookingHandler *scheduleCommands.RequestBookingHandler
	CancelBookingHandler  *scheduleCommands.CancelBookingHandler

	// Scheduling Query Handlers
	FreeSlotsHandler   *scheduleQueries.FreeSlotsHandler
	BookingsForHandler *scheduleQueries.BookingsForHandler
	GetBookingHandler  *scheduleQueries.GetBookingHandler

	// Exercise Command Handlers
	CreateExerciseHandler *exerciseCommands.CreateExerciseHandler
	AcceptExerciseHandler *exerciseCommands.AcceptExerciseHandler
	SubmitSolutionHandler *exerciseCommands.SubmitSolutionHandler
	CancelExerciseHandler *exerciseCommands.CancelExerciseHandler

	// Exercise Query Handlers
	ExercisesForStudentHandler *exerciseQueries.ExercisesForStudentHandler
	ExercisesForTutorHandler   *exerciseQueries.ExercisesForTutorHandler
	OpenExercisesHandler       *exerciseQueries.OpenExercisesHandler
	GetExerciseHandler         *exerciseQueries.GetExerciseHandler

	// Current user (configured per environment)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	addWindowHandler *scheduleCommands.AddWindowHandler,
	removeWindowHandler *scheduleCommands.RemoveWindowHandler,
	requestBookingHandler *scheduleCommands.RequestBookingHandler,
	cancelBookingHandler *scheduleCommands.CancelBookingHandler,
	freeSlotsHandler *scheduleQueries.FreeSlotsHandler,
	bookingsForHandler *scheduleQueries.BookingsForHandler,
	getBookingHandler *scheduleQueries.GetBookingHandler,
	createExerciseHandler *exerciseCommands.CreateExerciseHandler,
	acceptExerciseHandler *exerciseCommands.AcceptExerciseHandler,
	submitSolutionHandler *exerciseCommands.SubmitSolutionHandler,
	cancelExerciseHandler *exerciseCommands.CancelExerciseHandler,
	exercisesForStudentHandler *exerciseQueries.ExercisesForStudentHandler,
	exercisesForTutorHandler *exerciseQueries.ExercisesForTutorHandler,
	openExercisesHandler *exerciseQueries.OpenExercisesHandler,
	getExerciseHandler *exerciseQueries.GetExerciseHandler,
) *App {
	return &App{
		AddWindowHandler:           addWindowHandler,
		RemoveWindowHandler:        removeWindowHandler,
		RequestBookingHandler:      requestBookingHandler,
		CancelBookingHandler:       cancelBookingHandler,
		FreeSlotsHandler:           freeSlotsHandler,
		BookingsForHandler:         bookingsForHandler,
		GetBookingHandler:          getBookingHandler,
		CreateExerciseHandler:      createExerciseHandler,
		AcceptExerciseHandler:      acceptExerciseHandler,
		SubmitSolutionHandler:      submitSolutionHandler,
		CancelExerciseHandler:      cancelExerciseHandler,
		ExercisesForStudentHandler: exercisesForStudentHandler,
		ExercisesForTutorHandler:   exercisesForTutorHandler,
		OpenExercisesHandler:       openExercisesHandler,
		GetExerciseHandler:         getExerciseHandler,
		CurrentUserID:              uuid.Nil,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
