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
	acceptTutorID string
	acceptVersion int64
)

var acceptCmd = &cobra.Command{
	Use:   "accept <exercise-id>",
	Short: "Claim an open exercise request",
	Long: `Claim an open exercise request. The version must be the one you saw
when browsing; if another tutor claimed the request first, the claim
is rejected and the request keeps its first tutor.`,
	Aliases: []string{"claim"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AcceptExerciseHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}
		tutorID := app.CurrentUserID
		if acceptTutorID != "" {
			tutorID, err = parseID(acceptTutorID, "tutor")
			if err != nil {
				return err
			}
		}

		result, err := app.AcceptExerciseHandler.Handle(cmd.Context(), commands.AcceptExerciseCommand{
			ExerciseID: exerciseID,
			TutorID:    tutorID,
			Version:    acceptVersion,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrVersionMismatch), errors.Is(err, domain.ErrInvalidTransition):
				return fmt.Errorf("request was claimed by another tutor")
			default:
				return fmt.Errorf("failed to accept exercise request: %w", err)
			}
		}

		fmt.Printf("Claimed exercise request %s (now %s, version %d)\n",
			result.ExerciseID, result.Status, result.Version)

		return nil
	},
}

func init() {
	acceptCmd.Flags().StringVar(&acceptTutorID, "tutor", "", "tutor ID (default: current user)")
	acceptCmd.Flags().Int64Var(&acceptVersion, "version", 0, "request version last read")
}
