package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkantrust/abassist/config"
	"github.com/arkantrust/abassist/handlers"
	"github.com/arkantrust/abassist/reversal"
	"github.com/arkantrust/abassist/store"
	"github.com/arkantrust/abassist/transactions"
	"github.com/arkantrust/abassist/views"
	"github.com/arkantrust/abassist/xmlgen"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Start the portal HTTP server",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cmd.OutOrStdout(), cfg)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

// buildHandler wires every service of the portal from cfg. The returned
// cleanup closes the external store handle. The generation log is opened
// per append and needs no cleanup.
func buildHandler(cfg *config.Config, logger *slog.Logger) (*handlers.Handler, func(), error) {
	genLog, err := store.NewScopedLog(cfg.LogBackend, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("generation log: %w", err)
	}
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close failed", "error", err)
			}
		}
	}

	// q stays a nil interface when the external store is disabled.
	var q transactions.Querier
	if cfg.Capabilities().ExternalStore {
		repo, db, err := transactions.Open(cfg.ConnConfig())
		if err != nil {
			logger.Error("transaction store unavailable", "driver", cfg.TxnStore.Driver, "error", err)
		} else {
			q = repo
			closers = append(closers, db.Close)
		}
	}
	txns := transactions.NewService(q, logger)

	dispatcher, err := reversal.NewDispatcher(cfg.Dispatcher.Kind, cfg.JMXConfig(), logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	renderer, err := views.New()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("using the development session secret, set SESSION_SECRET")
	}

	h := handlers.New(handlers.Deps{
		Generator:    xmlgen.NewService(templateStore(cfg), genLog, logger),
		Transactions: txns,
		Reversals:    reversal.NewService(txns, dispatcher, logger),
		Views:        renderer,
		Flash:        handlers.NewFlasher(cfg.SessionSecret),
		Logger:       logger,
		TemplatesDir: cfg.TemplatesDir,
		TemplateExt:  cfg.TemplateExt,
	})
	return h, cleanup, nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	h, cleanup, err := buildHandler(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", srv.Addr,
			"templates_dir", cfg.TemplatesDir,
			"log_backend", cfg.LogBackend,
			"external_store", cfg.Capabilities().ExternalStore,
			"dispatcher", cfg.Dispatcher.Kind,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
