package application

import "context"

// Command represents an operation that modifies booking, availability or
// exercise state.
type Command interface {
	CommandName() string
}

// CommandHandler handles a specific command type.
type CommandHandler[C Command] interface {
	Handle(ctx context.Context, cmd C) error
}
