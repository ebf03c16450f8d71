package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baby-bliss/internal/auth"
	"baby-bliss/internal/cache"
	"baby-bliss/internal/config"
	"baby-bliss/internal/database"
	"baby-bliss/internal/events"
	"baby-bliss/internal/handlers"
	"baby-bliss/internal/logger"
	"baby-bliss/internal/mailer"
	"baby-bliss/internal/server"
	"baby-bliss/internal/tracing"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger := logger.New(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.App.Name, cfg.App.Environment, cfg.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			appLogger.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	db, err := database.Open(cfg, logger.Module(appLogger, "database"))
	if err != nil {
		return err
	}

	var store cache.Store = cache.NewMemory()
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		store = rdb
		appLogger.Info("using redis cache")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		np, err := events.NewNATSPublisher(cfg.NATS.URL, logger.Module(appLogger, "events"))
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		publisher = np
	}
	defer publisher.Close()

	mail := mailer.New(cfg.SMTP, cfg.App.FrontendURL, logger.Module(appLogger, "mailer"))
	defer mail.Wait()

	router := server.NewRouter(handlers.Deps{
		DB:     db,
		Logger: logger.Module(appLogger, "http"),
		Tokens: auth.NewTokenManager(cfg.Auth, store),
		Cache:  store,
		Mailer: mail,
		Events: publisher,
		Config: cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           tracing.Wrap(router, "http.server"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.Info("starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLogger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
