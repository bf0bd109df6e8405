package app

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/spf13/cobra"

	"github.com/stacklok/country-cache-server/database"
)

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back database migrations",
	Long: `Roll back database migrations.
WARNING: This operation can result in data loss. Use with caution.

Examples:
  # Roll back one step
  country-cache-api migrate down --config config.yaml --num-steps 1 --yes

  # Roll back everything (WARNING: drops every table)
  country-cache-api migrate down --config config.yaml --yes`,
	RunE: runMigrateDown,
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	_, connString, err := migrationTarget(cmd)
	if err != nil {
		return err
	}

	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	if numSteps > math.MaxInt32 {
		return fmt.Errorf("number of steps exceeds maximum allowed value")
	}

	prompt := "WARNING: This will roll back ALL migrations and drop every table. Continue?"
	if numSteps > 0 {
		prompt = fmt.Sprintf("WARNING: This will roll back %d migration(s) and may lose data. Continue?", numSteps)
	}
	ok, err := confirm(cmd, prompt)
	if err != nil || !ok {
		return err
	}

	if numSteps == 0 {
		slog.Warn("Rolling back all migrations")
	}
	if err := database.MigrateDown(connString, int(numSteps)); err != nil { // #nosec G115 -- bounded above
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}
