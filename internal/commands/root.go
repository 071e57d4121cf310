package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-site/folio/internal/config"
	"github.com/folio-site/folio/internal/db"
	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/logging"
	"github.com/folio-site/folio/internal/models"
	"github.com/folio-site/folio/internal/notify"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// Persistent flags
	configPath string
	verbose    bool
	actAs      string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio site API with a private kanban board",
	Long: `folio serves the portfolio site's JSON API: home sections, projects and a
small kanban board shared by the site owner and their fiancee.

The same board can be driven from the terminal with 'folio tickets' and
'folio board'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openStore connects and migrates the configured database
func openStore(ctx context.Context) (*db.Store, error) {
	store, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// withStore wraps a command so it runs with an open, migrated store
func withStore(fn func(ctx context.Context, store *db.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(ctx, store, args)
	}
}

// withBoard wraps a command so it runs against the workflow engine as the
// local user. Notifications queued by the command are flushed before exit.
func withBoard(fn func(ctx context.Context, svc *kanban.Service, sess models.Session, args []string) error) func(*cobra.Command, []string) error {
	return withStore(func(ctx context.Context, store *db.Store, args []string) error {
		dispatcher := notify.NewDispatcher(notify.NewSender(cfg.Mail, logger), cfg.Mail, logger)
		dispatcher.Start()
		defer dispatcher.Stop()

		sess, err := localSession(ctx, store)
		if err != nil {
			return err
		}
		return fn(ctx, kanban.NewService(store, dispatcher, logger), sess, args)
	})
}

// localSession resolves --as (default $USER) to a user. Unknown names act as
// an unregistered admin.
func localSession(ctx context.Context, store *db.Store) (models.Session, error) {
	name := actAs
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		return models.Session{Role: models.RoleAdmin}, nil
	}

	user, err := store.GetUserByUsername(ctx, name)
	if errors.Is(err, db.ErrNotFound) {
		return models.Session{Username: name, Role: models.RoleAdmin}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	return models.SessionFor(user), nil
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "folio.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringVar(&actAs, "as", "", "Username recorded on board changes (default $USER)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(columnsCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
}
