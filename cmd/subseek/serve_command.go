package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/subseek/subseek/internal/cache"
	"github.com/subseek/subseek/internal/config"
	grpcserver "github.com/subseek/subseek/internal/grpc"
	"github.com/subseek/subseek/internal/metrics"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC subtitle service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(runCtx, ctx)
		},
	}
}

func serve(ctx context.Context, cc *commandContext) error {
	cfg := cc.config()
	logger := config.GetLogger()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialise Sentry, continuing without error reporting")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	acq, err := cc.newAcquirer(cfg)
	if err != nil {
		return err
	}

	store, err := cache.OpenFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open track cache: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close track cache")
		}
	}()
	acq = cache.WrapAcquirer(acq, cache.NewTrackCache(store))

	grpcServer := grpcserver.NewGRPCServer(acq)

	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	logger.Info().
		Str("address", address).
		Str("cache", cfg.Cache.Provider).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Starting gRPC server")

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Received shutdown signal")
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(listener); err != nil {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	logger.Info().Msg("Server stopped gracefully")
	return nil
}
