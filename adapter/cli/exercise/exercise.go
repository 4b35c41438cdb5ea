package exercise

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the exercise command group
var Cmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercise-help requests",
	Long: `Submit, claim, and resolve exercise-help requests. A student posts a
request, exactly one tutor claims it, and the tutor delivers a solution.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(acceptCmd)
	Cmd.AddCommand(solveCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(openCmd)
	Cmd.AddCommand(showCmd)
}

func parseID(value, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s ID: %w", label, err)
	}
	return id, nil
}
