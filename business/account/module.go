// Package account implements the application state bounded context.
package account

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/trader-sentinel/business/account/app"
	accountDI "github.com/fd1az/trader-sentinel/business/account/di"
	"github.com/fd1az/trader-sentinel/business/account/infra/filestore"
	"github.com/fd1az/trader-sentinel/business/account/infra/memstore"
	"github.com/fd1az/trader-sentinel/business/account/infra/redisstore"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/health"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/monolith"
	"github.com/fd1az/trader-sentinel/pkg/ui"
)

// Module implements the account bounded context.
type Module struct{}

type pinger interface {
	Ping(ctx context.Context) error
}

// RegisterServices registers all account services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Persister by configured backend - private dependency
	di.RegisterToken(c, accountDI.Persister, func(sr di.ServiceRegistry) app.Persister {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		switch cfg.Store.Backend {
		case config.StoreRedis:
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Store.RedisAddr,
				Password: cfg.Store.RedisPassword,
				DB:       cfg.Store.RedisDB,
			})
			return redisstore.New(client, cfg.Store.RedisKey, log)
		case config.StoreFile:
			return filestore.New(cfg.Store.Path)
		default:
			return memstore.New()
		}
	})

	// Register Store (public - exposed to other modules)
	di.RegisterToken(c, accountDI.Store, func(sr di.ServiceRegistry) *app.Store {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewStore(accountDI.GetPersister(sr), log)
	})

	// Register HealthCheck (public) - pings the persistence backend
	di.RegisterToken(c, accountDI.HealthCheck, func(sr di.ServiceRegistry) health.CheckFunc {
		p := accountDI.GetPersister(sr)
		return func(ctx context.Context) error {
			// In-memory persisters are always reachable
			if pp, ok := p.(pinger); ok {
				return pp.Ping(ctx)
			}
			return nil
		}
	})

	return nil
}

// Startup restores the persisted state.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	step := ui.StartupMsg{Step: "store", Status: "done"}
	store := accountDI.GetStore(mono.Services())
	if err := store.Load(ctx); err != nil {
		log.Warn(ctx, "state not restored, using defaults", "error", err)
		step.Message = "state not restored: " + err.Error()
	}
	if mono.Config().Market.TUIMode {
		ui.Send(step)
	}

	if closer, ok := accountDI.GetPersister(mono.Services()).(interface{ Close() error }); ok {
		mono.OnClose(closer.Close)
	}

	log.Info(ctx, "account module started", "backend", mono.Config().Store.Backend)
	return nil
}
