package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/folio-site/folio/internal/access"
	"github.com/folio-site/folio/internal/kanban"
	"github.com/folio-site/folio/internal/notify"
	"github.com/folio-site/folio/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The schema is migrated once at startup.

Stops gracefully on SIGINT/SIGTERM: in-flight requests finish, then queued
notification emails are sent before exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		return runServer(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	dispatcher := notify.NewDispatcher(notify.NewSender(cfg.Mail, logger), cfg.Mail, logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	auth, err := access.NewAuthenticator(store, cfg.Server, logger)
	if err != nil {
		return err
	}
	board := kanban.NewService(store, dispatcher, logger)
	handler := web.NewServer(cfg.Server, board, store, auth, access.RoleGate{}, logger).Handler()
	srv := web.NewHTTPServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("notifications", cfg.Mail.Enabled && cfg.Mail.Recipient != ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr and PORT)")
}
