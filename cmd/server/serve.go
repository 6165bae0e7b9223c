package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	httpDelivery "github.com/shelflog/backend/internal/delivery/http"
	"github.com/shelflog/backend/internal/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Info("starting shelflog backend", "version", httpDelivery.Version, "environment", cfg.Server.Environment)
	logger.Info("cache configured", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL, "path", cfg.Cache.Path)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.store.Close()

	metrics.Register()
	if sized, ok := a.store.(interface{ Size() int }); ok {
		if err := metrics.RegisterCacheEntries(sized.Size); err != nil {
			logger.Warn("cache size gauge not registered", "err", err)
		}
	}

	router := httpDelivery.SetupRouter(cfg, httpDelivery.NewHandler(a.service), logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// The store is closed by the deferred Close once writes are drained.
	// Writes still running after the deadline fail with ErrCacheWrite and are dropped.
	shutdownErr := server.Shutdown(shutdownCtx)
	if err := a.service.Drain(shutdownCtx); err != nil {
		logger.Warn("pending cache writes abandoned", "err", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	logger.Info("server exited")
	return nil
}
