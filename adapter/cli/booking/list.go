package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var (
	listTutorID string
	listFrom    string
	listDays    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List a tutor's bookings",
	Long: `List a tutor's bookings within a horizon, most recent first.

Examples:
  lektio booking list --tutor <id>
  lektio booking list --tutor <id> --from 2026-03-01 --days 30`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.BookingsForHandler == nil {
			fmt.Println("Booking commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		tutorID := app.CurrentUserID
		var err error
		if listTutorID != "" {
			tutorID, err = parseID(listTutorID, "tutor")
			if err != nil {
				return err
			}
		}

		from := time.Now()
		if listFrom != "" {
			from, err = time.Parse("2006-01-02", listFrom)
			if err != nil {
				return fmt.Errorf("invalid from date, use YYYY-MM-DD: %w", err)
			}
		}
		to := from.AddDate(0, 0, listDays)

		bookings, err := app.BookingsForHandler.Handle(cmd.Context(), queries.BookingsForQuery{
			TutorID: tutorID,
			From:    from,
			To:      to,
		})
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}

		if len(bookings) == 0 {
			fmt.Printf("No bookings for tutor %s in the next %d days.\n", tutorID, listDays)
			return nil
		}

		fmt.Printf("Bookings for tutor %s\n", tutorID)
		fmt.Println(strings.Repeat("-", 72))
		for _, b := range bookings {
			fmt.Printf("  %-10s  %s - %s  student %s  v%d\n",
				b.Status,
				b.Start.Local().Format("Mon Jan 2 15:04"),
				b.End.Local().Format("15:04"),
				b.StudentID,
				b.Version,
			)
		}
		fmt.Printf("\n%d bookings total\n", len(bookings))

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listTutorID, "tutor", "", "tutor ID (default: current user)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "start of the horizon (YYYY-MM-DD, default: now)")
	listCmd.Flags().IntVar(&listDays, "days", 14, "horizon length in days")
}
