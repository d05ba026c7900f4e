package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/admin"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/media"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/telemetry"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront session")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shut down tracing")
		}
	}()

	pool, err := database.NewPool(ctx, cfg.Gateway, logger)
	if err != nil {
		return fmt.Errorf("failed to initialise gateway connection: %w", err)
	}
	defer pool.Close()

	gw := repository.NewGateway(pool, cfg.Sync.EventBuffer, logger)

	opts := store.DefaultOptions()
	opts.WriteTimeout = cfg.Sync.WriteTimeout
	opts.ReconnectInitialInterval = cfg.Sync.ReconnectInitial
	opts.ReconnectMaxInterval = cfg.Sync.ReconnectMaxInterval
	opts.ReconnectMaxRetries = cfg.Sync.ReconnectMaxRetries
	opts.CascadeCategoryDeletes = cfg.Sync.CascadeCategoryDeletes
	opts.TracerProvider = tp

	container := store.New(gw, opts, logger)
	if err := container.Start(ctx); err != nil {
		// The session stays up in its error state; a refresh can recover it.
		logger.Error().Err(err).Msg("initial load failed")
	}
	defer container.Close()

	gate, closeSessions, err := newGate(ctx, cfg.Admin, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	uploader := newUploader(ctx, cfg.S3, logger)

	orderService := service.NewOrderService(container, logger)

	mux := router.New(router.Handlers{
		Catalog: handler.NewCatalogHandler(container, logger),
		Cart:    handler.NewCartHandler(container, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Admin:   handler.NewAdminHandler(gate, container, uploader, logger),
		Events:  handler.NewEventsHandler(container, logger),
	}, gate, cfg.Telemetry.ServiceName, logger)

	// No WriteTimeout: /api/events streams for as long as the client stays.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Closing the container first ends every open event stream.
		container.Close()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

func newGate(ctx context.Context, cfg config.AdminConfig, logger zerolog.Logger) (*admin.Gate, func(), error) {
	if cfg.SessionBackend != "redis" {
		return admin.NewGate(cfg.Password, admin.NewMemoryStore(), logger), func() {}, nil
	}

	client, err := admin.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialise admin sessions: %w", err)
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("admin sessions stored in Redis")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close Redis client")
		}
	}
	return admin.NewGate(cfg.Password, admin.NewRedisStore(client, "storefront"), logger), closeFn, nil
}

func newUploader(ctx context.Context, cfg config.S3Config, logger zerolog.Logger) media.Uploader {
	local := media.NewDataURIUploader()
	if !cfg.Enabled {
		logger.Info().Msg("storing images as data URIs (S3 disabled)")
		return local
	}

	s3, err := media.NewS3Uploader(ctx, media.S3Options{
		Bucket:        cfg.Bucket,
		Region:        cfg.Region,
		Prefix:        cfg.Prefix,
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)
	if err != nil {
		logger.Warn().
			Err(err).
			Msg("failed to initialise S3 uploader, falling back to data URIs only")
		return local
	}

	return media.NewFallbackUploader(s3, local, true, logger)
}
