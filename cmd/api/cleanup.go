package main

import (
	"github.com/spf13/cobra"
)

// NewCleanupResetsCmd creates the cleanup-resets subcommand.
func NewCleanupResetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-resets",
		Short: "Delete expired and used password reset requests",
		Long: `Delete password reset requests that are expired or already used, once.
The server does the same periodically when RESET_CLEANUP_INTERVAL is positive.`,
		RunE: runCleanupResets,
	}
}

func runCleanupResets(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	auth, err := newAuth(ctx, cfg, database, nil, logger)
	if err != nil {
		return err
	}
	defer auth.Close()

	n, err := auth.Service.CleanupExpiredTokens(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Removed %d password reset requests\n", n)
	return nil
}
