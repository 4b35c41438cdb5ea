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
	solveTutorID string
	solveFileRef string
	solveVersion int64
)

var solveCmd = &cobra.Command{
	Use:   "solve <exercise-id>",
	Short: "Deliver a solution",
	Long: `Deliver a solution for an exercise request you claimed. Only the
assigned tutor may solve a request, and only while it is in progress.`,
	Aliases: []string{"deliver"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SubmitSolutionHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}
		tutorID := app.CurrentUserID
		if solveTutorID != "" {
			tutorID, err = parseID(solveTutorID, "tutor")
			if err != nil {
				return err
			}
		}

		err = app.SubmitSolutionHandler.Handle(cmd.Context(), commands.SubmitSolutionCommand{
			ExerciseID:      exerciseID,
			TutorID:         tutorID,
			SolutionFileRef: solveFileRef,
			Version:         solveVersion,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrForbidden):
				return fmt.Errorf("only the assigned tutor may deliver a solution")
			case errors.Is(err, domain.ErrVersionMismatch):
				return fmt.Errorf("request changed since you read it, fetch it again and retry")
			default:
				return fmt.Errorf("failed to submit solution: %w", err)
			}
		}

		fmt.Printf("Solution delivered for exercise request %s\n", exerciseID)
		return nil
	},
}

func init() {
	solveCmd.Flags().StringVar(&solveTutorID, "tutor", "", "tutor ID (default: current user)")
	solveCmd.Flags().StringVar(&solveFileRef, "file", "", "reference to the uploaded solution file (required)")
	solveCmd.Flags().Int64Var(&solveVersion, "version", 0, "request version last read")

	solveCmd.MarkFlagRequired("file")
}
