// Package market implements the market watching bounded context.
package market

import (
	"context"

	accountDI "github.com/fd1az/trader-sentinel/business/account/di"
	"github.com/fd1az/trader-sentinel/business/market/app"
	marketDI "github.com/fd1az/trader-sentinel/business/market/di"
	"github.com/fd1az/trader-sentinel/business/market/infra/reporter"
	"github.com/fd1az/trader-sentinel/business/market/infra/sentinelapi"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/health"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register market API client - private dependency
	di.RegisterToken(c, marketDI.Client, func(sr di.ServiceRegistry) *sentinelapi.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := sentinelapi.NewClient(sentinelapi.Config{
			BaseURL: cfg.Market.APIURL,
			Timeout: cfg.Market.RequestTimeout,
		}, log)
		if err != nil {
			panic("failed to create market api client: " + err.Error())
		}
		return client
	})

	// Register Reporter - TUI or console depending on mode
	di.RegisterToken(c, marketDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.Market.TUIMode {
			return reporter.NewTUIReporter()
		}
		return reporter.NewConsoleReporter()
	})

	// Register Watcher (public)
	di.RegisterToken(c, marketDI.Watcher, func(sr di.ServiceRegistry) *app.Watcher {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		threshold := cfg.Market.MinSpreadPercentDecimal()
		w, err := app.NewWatcher(
			marketDI.GetClient(sr),
			accountDI.GetStore(sr),
			marketDI.GetReporter(sr),
			app.WatcherConfig{
				Symbols:          cfg.Market.Watchlist,
				PollInterval:     cfg.Market.PollInterval,
				RequestTimeout:   cfg.Market.RequestTimeout,
				MinSpreadPercent: &threshold,
				UseStream:        cfg.Market.UseStream,
				StreamInterval:   cfg.Market.StreamInterval,
			},
			log,
		)
		if err != nil {
			panic("failed to create watcher: " + err.Error())
		}
		return w
	})

	// Register HealthCheck (public) - market API reachability
	di.RegisterToken(c, marketDI.HealthCheck, func(sr di.ServiceRegistry) health.CheckFunc {
		client := marketDI.GetClient(sr)
		return client.Health
	})

	return nil
}

// Startup probes the market API. An unreachable API is not fatal; the
// watcher keeps polling.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	client := marketDI.GetClient(mono.Services())
	if err := client.Health(ctx); err != nil {
		log.Warn(ctx, "market api unreachable", "url", cfg.Market.APIURL, "error", err)
	}

	log.Info(ctx, "market module started",
		"api_url", cfg.Market.APIURL,
		"poll_interval", cfg.Market.PollInterval,
		"min_spread_percent", cfg.Market.MinSpreadPercent)
	return nil
}
