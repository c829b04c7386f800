// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/trader-sentinel/business/market/app"
	"github.com/fd1az/trader-sentinel/business/market/infra/sentinelapi"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/health"
)

// Public service tokens - exposed to other modules
var (
	Watcher     = di.NewToken[*app.Watcher]("market.Watcher")
	HealthCheck = di.NewToken[health.CheckFunc]("market.HealthCheck")
)

// Private dependency tokens - internal to market module
var (
	Client   = di.NewToken[*sentinelapi.Client]("market:client")
	Reporter = di.NewToken[app.Reporter]("market:reporter")
)

// Helper functions for type-safe access
func GetWatcher(c di.ServiceRegistry) *app.Watcher {
	return di.GetToken(c, Watcher)
}

func GetHealthCheck(c di.ServiceRegistry) health.CheckFunc {
	return di.GetToken(c, HealthCheck)
}

func GetClient(c di.ServiceRegistry) *sentinelapi.Client {
	return di.GetToken(c, Client)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
