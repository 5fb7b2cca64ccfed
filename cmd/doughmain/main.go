// Command doughmain runs the Infinite Doughmain ordering terminal API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/infinite-doughmain/ordering/internal/di"
	"github.com/infinite-doughmain/ordering/internal/handlers"
	"github.com/infinite-doughmain/ordering/internal/platform/config"
	"github.com/infinite-doughmain/ordering/internal/platform/idempotency"
	"github.com/infinite-doughmain/ordering/internal/platform/observability"
)

const drainTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "doughmain:", err)
		os.Exit(1)
	}
	logger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "doughmain: logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger.Named("doughmain")); err != nil {
		logger.Error("terminal stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	startedAt := time.Now().UTC()
	container, err := di.NewContainer(observability.WithLogger(ctx, logger), cfg, di.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer container.Close()

	sessions := handlers.NewSessionHandlers(container.Services.Sessions, container.Printer)
	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.TraceMiddleware(),
			observability.InjectLoggerMiddleware(logger.Named("http")),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(
			handlers.WithHealthStartedAt(startedAt),
			handlers.WithReadinessCheck("customer_store", container.StoreReady),
		)),
		handlers.WithMenuRoutes(handlers.NewMenuHandlers(container.Catalog).Routes),
		handlers.WithSessionRoutes(sessions.Routes),
		handlers.WithSessionMiddlewares(idempotency.Middleware(idempotency.NewMemoryStore(),
			idempotency.WithTTL(cfg.Session.ReplayTTL))),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("ordering terminal listening",
			zap.String("addr", server.Addr),
			zap.String("store_backend", string(cfg.Store.Backend)),
			zap.String("store_name", cfg.Receipt.StoreName),
			zap.String("locale", cfg.Display.Locale.String()),
			zap.Int("customers_loaded", container.Services.Customers.Len()),
		)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutdown requested, draining requests")
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := server.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	return nil
}
