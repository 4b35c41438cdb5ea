package availability

import (
	"github.com/spf13/cobra"
)

// Cmd is the availability command group
var Cmd = &cobra.Command{
	Use:   "availability",
	Short: "Manage tutor availability",
	Long:  `Declare and manage recurring availability rules, one-off windows, and blocked time.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(slotsCmd)
}
