package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/discshelf/internal/migrations"
)

func init() {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Server.LogLevel)

	db, err := openDB(cmd.Context(), cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	version, err := migrations.Current(cmd.Context(), db)
	if err != nil {
		return err
	}
	all, err := migrations.All()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"database":       cfg.Database.Path,
			"schema_version": version,
			"migrations":     len(all),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (%d migrations known)\n", cfg.Database.Path, version, len(all))
	return nil
}
