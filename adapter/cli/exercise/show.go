package exercise

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/exercises/application/queries"
	"github.com/lektio/lektio/internal/exercises/domain"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <exercise-id>",
	Short:   "Show an exercise request",
	Aliases: []string{"get"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetExerciseHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		exerciseID, err := parseID(args[0], "exercise")
		if err != nil {
			return err
		}

		e, err := app.GetExerciseHandler.Handle(cmd.Context(), queries.GetExerciseQuery{
			ExerciseID: exerciseID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrExerciseNotFound) {
				return fmt.Errorf("exercise request %s not found", exerciseID)
			}
			return fmt.Errorf("failed to get exercise request: %w", err)
		}

		fmt.Printf("Exercise request %s\n", e.ID)
		fmt.Println(strings.Repeat("-", 48))
		fmt.Printf("  Status:    %s\n", e.Status)
		fmt.Printf("  Title:     %s\n", e.Title)
		fmt.Printf("  Subject:   %s\n", e.Subject)
		fmt.Printf("  Price:     %d cents\n", e.PriceCents)
		fmt.Printf("  Student:   %s\n", e.StudentID)
		if e.TutorID != nil {
			fmt.Printf("  Tutor:     %s\n", *e.TutorID)
		}
		fmt.Printf("  Request:   %s\n", e.RequestFileRef)
		if e.SolutionFileRef != nil {
			fmt.Printf("  Solution:  %s\n", *e.SolutionFileRef)
		}
		fmt.Printf("  Submitted: %s\n", e.SubmittedAt.Local().Format("Mon Jan 2 2006 15:04"))
		if e.SolvedAt != nil {
			fmt.Printf("  Solved:    %s\n", e.SolvedAt.Local().Format("Mon Jan 2 2006 15:04"))
		}
		fmt.Printf("  Version:   %d\n", e.Version)

		return nil
	},
}
