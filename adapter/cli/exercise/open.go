package exercise

import (
	"fmt"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/exercises/application/queries"
	"github.com/spf13/cobra"
)

var (
	openSubject string
	openLimit   int
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Browse open exercise requests",
	Long: `Browse unclaimed exercise requests, oldest first, optionally filtered
by subject. Note the version of a request you want to claim; accepting
requires it.

Examples:
  lektio exercise open
  lektio exercise open --subject math --limit 20`,
	Aliases: []string{"browse"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.OpenExercisesHandler == nil {
			fmt.Println("Exercise commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		exercises, err := app.OpenExercisesHandler.Handle(cmd.Context(), queries.OpenExercisesQuery{
			Subject: openSubject,
			Limit:   openLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list open exercise requests: %w", err)
		}

		if len(exercises) == 0 {
			fmt.Println("No open exercise requests.")
			return nil
		}

		printExercises(exercises)
		return nil
	},
}

func init() {
	openCmd.Flags().StringVar(&openSubject, "subject", "", "filter by subject")
	openCmd.Flags().IntVar(&openLimit, "limit", 0, "maximum number of requests to show")
}
