package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"expensetracker/internal/observability"
	"expensetracker/internal/routes"
	"expensetracker/internal/services"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. Pending migrations are applied first and expired
password reset requests are swept in the background.`,
		RunE: runServe,
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().String("log-format", "", "log format: json or text (overrides LOG_FORMAT)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	auth, err := newAuth(ctx, cfg, database, metrics, logger)
	if err != nil {
		return err
	}
	defer auth.Close()

	receipts, err := receiptStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	router := routes.SetupRoutes(routes.Deps{
		DB:       database.DB,
		Config:   cfg,
		Logger:   logger,
		Auth:     auth.Service,
		Tokens:   auth.Issuer,
		Receipts: receipts,
		Metrics:  metrics,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	sweepDone := services.NewResetSweeper(auth.Service, cfg.ResetCleanupInterval, logger).Start(ctx)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-sweepDone
		if err != nil {
			return oops.Code("SERVER_FAILED").With("port", cfg.Port).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	<-sweepDone
	logger.Info("server exiting")
	return nil
}
