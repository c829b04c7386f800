// Package di contains dependency injection tokens for the account context.
package di

import (
	"github.com/fd1az/trader-sentinel/business/account/app"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/health"
)

// Public service tokens - exposed to other modules
var (
	Store       = di.NewToken[*app.Store]("account.Store")
	HealthCheck = di.NewToken[health.CheckFunc]("account.HealthCheck")
)

// Private dependency tokens - internal to account module
var (
	Persister = di.NewToken[app.Persister]("account:persister")
)

// Helper functions for type-safe access
func GetStore(c di.ServiceRegistry) *app.Store {
	return di.GetToken(c, Store)
}

func GetHealthCheck(c di.ServiceRegistry) health.CheckFunc {
	return di.GetToken(c, HealthCheck)
}

func GetPersister(c di.ServiceRegistry) app.Persister {
	return di.GetToken(c, Persister)
}
