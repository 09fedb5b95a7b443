package cli

import (
	"fmt"

	"inventory-engine/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCommand(env *Env) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back schema migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			switch direction {
			case "up":
				return db.MigrateUp(env.Config.DatabaseURL, env.Logger)
			case "down":
				return db.MigrateDown(env.Config.DatabaseURL, steps, env.Logger)
			}
			return fmt.Errorf("unknown migrate direction %q (want up or down)", direction)
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back with down")
	return cmd
}
