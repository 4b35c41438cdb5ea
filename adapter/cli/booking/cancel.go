package booking

import (
	"errors"
	"fmt"

	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/commands"
	"github.com/lektio/lektio/internal/scheduling/domain"
	"github.com/spf13/cobra"
)

var (
	cancelActorID string
	cancelVersion int64
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <booking-id>",
	Short: "Cancel a scheduled booking",
	Long: `Cancel a scheduled booking. Only the booking's tutor or student may
cancel, and only before the lesson starts. The version must match the
one last read; a stale version means the booking changed underneath you.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelBookingHandler == nil {
			fmt.Println("Booking commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		bookingID, err := parseID(args[0], "booking")
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

		err = app.CancelBookingHandler.Handle(cmd.Context(), commands.CancelBookingCommand{
			BookingID: bookingID,
			ActorID:   actorID,
			Version:   cancelVersion,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrForbidden):
				return fmt.Errorf("only the booking's tutor or student may cancel it")
			case errors.Is(err, domain.ErrVersionMismatch):
				return fmt.Errorf("booking changed since you read it, fetch it again and retry")
			default:
				return fmt.Errorf("failed to cancel booking: %w", err)
			}
		}

		fmt.Printf("Cancelled booking %s\n", bookingID)
		return nil
	},
}

func init() {
	cancelCmd.Flags().StringVar(&cancelActorID, "actor", "", "acting user ID (default: current user)")
	cancelCmd.Flags().Int64Var(&cancelVersion, "version", 0, "booking version last read")

	cancelCmd.MarkFlagRequired("version")
}
