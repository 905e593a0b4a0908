package cmd

import (
	"fleetreport/internal/infrastructure/migration"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := migration.NewMigration(cfg.DB, nil).Up(); err != nil {
			return err
		}
		ok(cmd.OutOrStdout(), "Migrations applied (%s)\n", cfg.DB.Dialect())
		return nil
	},
}
