package booking

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the booking command group
var Cmd = &cobra.Command{
	Use:   "booking",
	Short: "Manage lesson bookings",
	Long:  `Request, cancel, and inspect lesson bookings between students and tutors.`,
}

func init() {
	Cmd.AddCommand(requestCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
}

func parseID(value, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", label, err)
	}
	return id, nil
}
