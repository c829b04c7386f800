// Package feed implements the market data backend bounded context.
package feed

import (
	"context"
	"slices"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	feedDI "github.com/fd1az/trader-sentinel/business/feed/di"
	"github.com/fd1az/trader-sentinel/business/feed/infra/binance"
	"github.com/fd1az/trader-sentinel/business/feed/infra/cex"
	"github.com/fd1az/trader-sentinel/business/feed/infra/dexscreener"
	"github.com/fd1az/trader-sentinel/business/feed/infra/googletts"
	"github.com/fd1az/trader-sentinel/business/feed/infra/httpapi"
	"github.com/fd1az/trader-sentinel/business/feed/infra/uniswap"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/monolith"
)

// Module implements the feed bounded context.
type Module struct{}

// RegisterServices registers all feed services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Binance provider - private, closed on shutdown
	di.RegisterToken(c, feedDI.Binance, func(sr di.ServiceRegistry) *binance.Provider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		p, err := binance.NewProvider(binance.ProviderConfig{
			WebSocketURL:   cfg.Feed.BinanceWSURL,
			RESTURL:        cfg.Feed.BinanceRESTURL,
			Symbols:        cfg.Market.Watchlist,
			StaleTimeout:   cfg.Feed.StaleTimeout,
			RequestTimeout: cfg.Feed.VenueTimeout,
			EnableStream:   cfg.Feed.BinanceWSURL != "",
		}, log)
		if err != nil {
			panic("failed to create binance provider: " + err.Error())
		}
		return p
	})

	// Register EthClient - private dependency, dialed only for the uniswap venue
	di.RegisterToken(c, feedDI.EthClient, func(sr di.ServiceRegistry) *ethclient.Client {
		cfg := sr.Get("config").(*config.Config)

		client, err := ethclient.Dial(cfg.Feed.EthRPCURL)
		if err != nil {
			panic("failed to dial ethereum rpc: " + err.Error())
		}
		return client
	})

	// Register venue providers in configured order - private dependency
	di.RegisterToken(c, feedDI.Providers, func(sr di.ServiceRegistry) []app.VenueProvider {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		providers := make([]app.VenueProvider, 0, len(cfg.Feed.Venues))
		for _, name := range cfg.Feed.Venues {
			p, err := newProvider(sr, cfg, log, name)
			if err != nil {
				panic("failed to create venue provider " + name + ": " + err.Error())
			}
			if p == nil {
				log.Warn(context.Background(), "unknown venue skipped", "venue", name)
				continue
			}
			providers = append(providers, p)
		}
		return providers
	})

	// Register Service (public)
	di.RegisterToken(c, feedDI.Service, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		threshold := cfg.Feed.AlertSpreadPercentDecimal()
		svc, err := app.NewService(feedDI.GetProviders(sr), app.ServiceConfig{
			VenueMinInterval:   cfg.Feed.VenueMinInterval,
			VenueTimeout:       cfg.Feed.VenueTimeout,
			SnapshotTTL:        cfg.Feed.SnapshotTTL,
			AlertSpreadPercent: &threshold,
		}, log)
		if err != nil {
			panic("failed to create feed service: " + err.Error())
		}
		return svc
	})

	// Register text-to-speech client - private, resolved only when enabled
	di.RegisterToken(c, feedDI.Speech, func(sr di.ServiceRegistry) *googletts.Synthesizer {
		log := sr.Get("logger").(logger.LoggerInterface)

		s, err := googletts.New(context.Background(), log)
		if err != nil {
			panic("failed to create text-to-speech client: " + err.Error())
		}
		return s
	})

	// Register HTTP handler (public)
	di.RegisterToken(c, feedDI.Handler, func(sr di.ServiceRegistry) *httpapi.Handler {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var opts []httpapi.Option
		if cfg.Feed.TTS.Enabled {
			opts = append(opts, httpapi.WithSpeech(feedDI.GetSpeech(sr)))
		}

		return httpapi.NewHandler(feedDI.GetService(sr), httpapi.Config{
			StreamDefaultInterval: cfg.Feed.StreamDefaultInterval,
			StreamMinInterval:     cfg.Feed.StreamMinInterval,
			StreamMaxInterval:     cfg.Feed.StreamMaxInterval,
			TTSLanguage:           cfg.Feed.TTS.Language,
			TTSVoice:              cfg.Feed.TTS.Voice,
		}, log, opts...)
	})

	return nil
}

// newProvider returns nil for venues it does not know.
func newProvider(sr di.ServiceRegistry, cfg *config.Config, log logger.LoggerInterface, name string) (app.VenueProvider, error) {
	rest := func(url string) cex.Config {
		return cex.Config{BaseURL: url, Timeout: cfg.Feed.VenueTimeout}
	}

	switch name {
	case binance.Name:
		return feedDI.GetBinance(sr), nil
	case "bybit":
		return cex.NewBybit(rest(cfg.Feed.BybitURL), log)
	case "okx":
		return cex.NewOKX(rest(cfg.Feed.OKXURL), log)
	case "mexc":
		return cex.NewMEXC(rest(cfg.Feed.MEXCURL), log)
	case uniswap.Name:
		return uniswap.NewProvider(
			feedDI.GetEthClient(sr),
			sr.Get("assetRegistry").(*asset.Registry),
			uniswap.Config{
				Quoter:   cfg.Feed.UniswapQuoterHex(),
				FeeTiers: cfg.Feed.UniswapFeeTiers,
			},
			log,
		)
	case dexscreener.Name:
		return dexscreener.NewProvider(dexscreener.Config{
			BaseURL: cfg.Feed.DexScreenerURL,
			Timeout: cfg.Feed.VenueTimeout,
		}, log)
	default:
		return nil, nil
	}
}

// Startup connects the Binance stream in the background. Quotes are served
// over REST until it is up.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	sr := mono.Services()

	svc := feedDI.GetService(sr)
	mono.OnClose(svc.Close)

	if slices.Contains(cfg.Feed.Venues, binance.Name) {
		p := feedDI.GetBinance(sr)
		mono.OnClose(p.Close)

		go func() {
			if err := p.Connect(ctx); err != nil && ctx.Err() == nil {
				log.Warn(ctx, "binance stream unavailable, using REST", "error", err)
			}
		}()
	}

	if slices.Contains(cfg.Feed.Venues, uniswap.Name) {
		client := feedDI.GetEthClient(sr)
		mono.OnClose(func() error {
			client.Close()
			return nil
		})
	}

	if cfg.Feed.TTS.Enabled {
		mono.OnClose(feedDI.GetSpeech(sr).Close)
	}

	log.Info(ctx, "feed module started",
		"venues", svc.Venues(),
		"tts_enabled", cfg.Feed.TTS.Enabled,
		"venue_min_interval", cfg.Feed.VenueMinInterval,
		"snapshot_ttl", cfg.Feed.SnapshotTTL)
	return nil
}
