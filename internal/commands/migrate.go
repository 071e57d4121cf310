package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/folio-site/folio/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed defaults",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, store *db.Store, args []string) error {
		// openStore already migrated
		if err := store.Ping(ctx); err != nil {
			return err
		}
		fmt.Printf("✅ Database %s is up to date\n", cfg.Database.Driver)
		return nil
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("folio %s (commit %s, built %s)\n", version, commit, date)
	},
}
