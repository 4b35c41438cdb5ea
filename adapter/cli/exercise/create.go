package exercise

import (
	"fmt"
	"strings"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/exercises/application/commands"
	"github.com/spf13/cobra"
)

var (
	createStudentID  string
	createTitle      string
	createSubject    string
	createPriceCents int64
	createFileRef    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit an exercise-help request",
	Long: `Submit a new exercise-help request. The request becomes visible to
tutors browsing open requests and stays open until a tutor claims it
or the student withdraws it.

Examples:
  lektio exercise create --student <id> --title "Integration by parts" --subject math --price 1500 --file req-42.pdf`,
	Aliases: []string{"submit", "new"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateExerciseHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		studentID := app.CurrentUserID
		var err error
		if createStudentID != "" {
			studentID, err = parseID(createStudentID, "student")
			if err != nil {
				return err
			}
		}

		result, err := app.CreateExerciseHandler.Handle(cmd.Context(), commands.CreateExerciseCommand{
			StudentID:      studentID,
			Title:          createTitle,
			Subject:        createSubject,
			PriceCents:     createPriceCents,
			RequestFileRef: createFileRef,
		})
		if err != nil {
			return fmt.Errorf("failed to create exercise request: %w", err)
		}

		fmt.Println("Exercise request submitted")
		fmt.Println(strings.Repeat("-", 40))
		fmt.Printf("  Title:       %s\n", createTitle)
		fmt.Printf("  Subject:     %s\n", createSubject)
		fmt.Printf("  Price:       %d cents\n", createPriceCents)
		fmt.Printf("  Exercise ID: %s\n", result.ExerciseID)
		fmt.Printf("  Version:     %d\n", result.Version)

		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createStudentID, "student", "", "student ID (default: current user)")
	createCmd.Flags().StringVar(&createTitle, "title", "", "request title (required)")
	createCmd.Flags().StringVar(&createSubject, "subject", "", "subject area (required)")
	createCmd.Flags().Int64Var(&createPriceCents, "price", 0, "offered price in cents (required)")
	createCmd.Flags().StringVar(&createFileRef, "file", "", "reference to the uploaded exercise file (required)")

	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("subject")
	createCmd.MarkFlagRequired("price")
	createCmd.MarkFlagRequired("file")
}
