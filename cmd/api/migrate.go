package main

import (
	"github.com/spf13/cobra"

	"expensetracker/internal/db/migrations"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Create the database if needed and apply all pending migrations.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	newLogger(cfg)
	ctx := cmd.Context()

	cmd.Println("Running migrations...")
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	v, err := migrations.Version(ctx, database.DB)
	if err != nil {
		return err
	}
	cmd.Printf("Migrations completed, schema version %d\n", v)
	return nil
}
