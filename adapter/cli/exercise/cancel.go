package exercise

import (
	"errors"
	"fmt"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/exercises/application/commands"
	"github.com/lektio/lektio/internal/exercises/domain"
	"github.com/spf13/cobra"
)

var (
	cancelActorID string
	cancelVersion int64
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <exercise-id>",
	Short: "Withdraw an exercise request",
	Long: `Withdraw an exercise request. The student may withdraw an open or
in-progress request; a solved request can no longer be withdrawn.`,
	Aliases: []string{"withdraw"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelExerciseHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}
		actorID := app.CurrentUserID
		if cancelActorID != "" {
			actorID, err = parseID(cancelActorID, "actor")
			if err != nil {
				return err
			}
		}

		err = app.CancelExerciseHandler.Handle(cmd.Context(), commands.CancelExerciseCommand{
			ExerciseID: exerciseID,
			ActorID:    actorID,
			Version:    cancelVersion,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrForbidden):
				return fmt.Errorf("only the requesting student may withdraw the request")
			case errors.Is(err, domain.ErrInvalidTransition):
				return fmt.Errorf("request is already resolved and cannot be withdrawn")
			case errors.Is(err, domain.ErrVersionMismatch):
				return fmt.Errorf("request changed since you read it, fetch it again and retry")
			default:
				return fmt.Errorf("failed to cancel exercise request: %w", err)
			}
		}

		fmt.Printf("Withdrew exercise request %s\n", exerciseID)
		return nil
	},
}

func init() {
	cancelCmd.Flags().StringVar(&cancelActorID, "actor", "", "acting user ID (default: current user)")
	cancelCmd.Flags().Int64Var(&cancelVersion, "version", 0, "request version last read")
}
