package exercise

import (
	"fmt"
	"strings"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/exercises/application/queries"
	"github.com/spf13/cobra"
)

var (
	listStudentID string
	listTutorID   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise requests",
	Long: `List a student's exercise requests or the requests assigned to a
tutor, most recent first.

Examples:
  lektio exercise list --student <id>
  lektio exercise list --tutor <id>`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ExercisesForStudentHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}
		if listStudentID != "" && listTutorID != "" {
			return fmt.Errorf("pass either --student or --tutor, not both")
		}

		var (
			exercises []queries.ExerciseDTO
			err       error
		)
		switch {
		case listTutorID != "":
			tutorID, parseErr := parseID(listTutorID, "tutor")
			if parseErr != nil {
				return parseErr
			}
			exercises, err = app.ExercisesForTutorHandler.Handle(cmd.Context(), queries.ExercisesForTutorQuery{
				TutorID: tutorID,
			})
		case listStudentID != "":
			studentID, parseErr := parseID(listStudentID, "student")
			if parseErr != nil {
				return parseErr
			}
			exercises, err = app.ExercisesForStudentHandler.Handle(cmd.Context(), queries.ExercisesForStudentQuery{
				StudentID: studentID,
			})
		default:
			exercises, err = app.ExercisesForStudentHandler.Handle(cmd.Context(), queries.ExercisesForStudentQuery{
				StudentID: app.CurrentUserID,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to list exercise requests: %w", err)
		}

		if len(exercises) == 0 {
			fmt.Println("No exercise requests found.")
			return nil
		}

		printExercises(exercises)
		return nil
	},
}

func printExercises(exercises []queries.ExerciseDTO) {
	fmt.Println(strings.Repeat("-", 72))
	for _, e := range exercises {
		fmt.Printf("  %-12s  %-28s  %-10s  %4d cents  v%d\n",
			e.Status, truncate(e.Title, 28), e.Subject, e.PriceCents, e.Version)
		fmt.Printf("      id %s\n", e.ID)
	}
	fmt.Printf("\n%d requests total\n", len(exercises))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	listCmd.Flags().StringVar(&listStudentID, "student", "", "student ID (default: current user)")
	listCmd.Flags().StringVar(&listTutorID, "tutor", "", "tutor ID")
}
