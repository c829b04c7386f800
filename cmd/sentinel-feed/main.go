// Package main is the entry point for the market data backend consumed by
// the sentinel client.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/business/feed"
	feedDI "github.com/fd1az/trader-sentinel/business/feed/di"
	"github.com/fd1az/trader-sentinel/internal/bootstrap"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/monolith"
)

const shutdownTimeout = 10 * time.Second

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sentinel-feed %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	log := bootstrap.NewLogger(os.Stderr, cfg)
	log.Info(ctx, "starting sentinel feed",
		"version", version,
		"environment", cfg.App.Environment,
	)

	stopTelemetry := bootstrap.StartTelemetry(ctx, cfg.Telemetry, log)
	defer stopTelemetry()

	mono, err := monolith.New(cfg, log, &feed.Module{})
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	if err := mono.Start(ctx); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Feed.Port),
		Handler:           feedDI.GetHandler(mono.Services()).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "feed api listening", "port", cfg.Feed.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("feed api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("feed api shutdown: %w", err)
	}
	return nil
}
