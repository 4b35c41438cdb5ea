package availability

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lektio/lektio/adapter/cli"
	"github.com/lektio/lektio/internal/scheduling/application/commands"
	"github.com/spf13/cobra"
)

var removeTutorID string

var removeCmd = &cobra.Command{
	Use:   "remove <window-id>",
	Short: "Remove an availability window",
	Long: `Remove an availability window. Existing bookings inside the window
are not affected. Removing a window that no longer exists succeeds.`,
	Aliases: []string{"rm", "delete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RemoveWindowHandler == nil {
			fmt.Println("Availability commands require database connection.")
			fmt.Println("Start services with: docker-compose up -d")
			return nil
		}

		windowID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid window ID: %w", err)
		}
		tutorID, err := resolveTutorID(app.CurrentUserID, removeTutorID)
		if err != nil {
			return err
		}

		err = app.RemoveWindowHandler.Handle(cmd.Context(), commands.RemoveWindowCommand{
			WindowID: windowID,
			TutorID:  tutorID,
		})
		if err != nil {
			return fmt.Errorf("failed to remove window: %w", err)
		}

		fmt.Printf("Removed window %s\n", windowID)
		return nil
	},
}

func init() {
	removeCmd.Flags().StringVar(&removeTutorID, "tutor", "", "tutor ID (default: current user)")
}
