package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/queries"
	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <booking-id>",
	Short:   "Show a booking",
	Aliases: []string{"get"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetBookingHandler == nil {
			fmt.Println("Booking commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		bookingID, err := parseID(args[0], "booking")
		if err != nil {
			return err
		}

		b, err := app.GetBookingHandler.Handle(cmd.Context(), queries.GetBookingQuery{
			BookingID: bookingID,
		})
		if err != nil {
			if errors.Is(err, domain.ErrBookingNotFound) {
				return fmt.Errorf("booking %s not found", bookingID)
			}
			return fmt.Errorf("failed to get booking: %w", err)
		}

		fmt.Printf("Booking %s\n", b.ID)
		fmt.Println(strings.Repeat("-", 48))
		fmt.Printf("  Status:  %s\n", b.Status)
		fmt.Printf("  Tutor:   %s\n", b.TutorID)
		fmt.Printf("  Student: %s\n", b.StudentID)
		fmt.Printf("  Start:   %s\n", b.Start.Local().Format("Mon Jan 2 2006 15:04"))
		fmt.Printf("  End:     %s\n", b.End.Local().Format("Mon Jan 2 2006 15:04"))
		fmt.Printf("  Version: %d\n", b.Version)

		return nil
	},
}
