package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/queries"
	"github.com/spf13/cobra"
)

var (
	slotsTutorID string
	slotsFrom    string
	slotsDays    int
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "List a tutor's free slots",
	Long: `List the bookable slots a tutor has within a horizon. Slots are
computed from the tutor's availability windows; they are advisory and
every booking request is re-validated against the ledger.

Examples:
  lektio availability slots --tutor <id>
  lektio availability slots --tutor <id> --from 2026-03-14 --days 7`,
	Aliases: []string{"free"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.FreeSlotsHandler == nil {
			fmt.Println("Availability commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		tutorID, err := resolveTutorID(app.CurrentUserID, slotsTutorID)
		if err != nil {
			return err
		}

		from := time.Now()
		if slotsFrom != "" {
			from, err = time.Parse("2006-01-02", slotsFrom)
			if err != nil {
				return fmt.Errorf("invalid from date, use YYYY-MM-DD: %w", err)
			}
		}
		to := from.AddDate(0, 0, slotsDays)

		slots, err := app.FreeSlotsHandler.Handle(cmd.Context(), queries.FreeSlotsQuery{
			TutorID: tutorID,
			From:    from,
			To:      to,
		})
		if err != nil {
			return fmt.Errorf("failed to list slots: %w", err)
		}

		if len(slots) == 0 {
			fmt.Printf("No free slots for tutor %s in the next %d days.\n", tutorID, slotsDays)
			return nil
		}

		fmt.Printf("Free slots for tutor %s\n", tutorID)
		fmt.Println(strings.Repeat("-", 60))
		for _, slot := range slots {
			fmt.Printf("  %s - %s  (%d min)\n",
				slot.Start.Local().Format("Mon Jan 2 15:04"),
				slot.End.Local().Format("15:04"),
				slot.DurationMinutes,
			)
		}
		fmt.Printf("\n%d slots total\n", len(slots))

		return nil
	},
}

func init() {
	slotsCmd.Flags().StringVar(&slotsTutorID, "tutor", "", "tutor ID (default: current user)")
	slotsCmd.Flags().StringVar(&slotsFrom, "from", "", "start of the horizon (YYYY-MM-DD, default: now)")
	slotsCmd.Flags().IntVar(&slotsDays, "days", 14, "horizon length in days")
}
