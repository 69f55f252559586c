package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/petmatch/auth-service/app/repository"
	"github.com/petmatch/auth-service/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge expired revocation entries",
	Long:  `Delete revocation registry entries whose tokens have already expired. The serve command runs the same sweep periodically; this runs it once and exits.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		revokedRepo := repository.NewRevokedTokenRepository(db)
		purged, err := revokedRepo.DeleteExpired(context.Background())
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired revocation entries\n", purged)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
