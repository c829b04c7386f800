// Package di contains dependency injection tokens for the feed context.
package di

import (
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	"github.com/fd1az/trader-sentinel/business/feed/infra/binance"
	"github.com/fd1az/trader-sentinel/business/feed/infra/googletts"
	"github.com/fd1az/trader-sentinel/business/feed/infra/httpapi"
	"github.com/fd1az/trader-sentinel/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Service = di.NewToken[*app.Service]("feed.Service")
	Handler = di.NewToken[*httpapi.Handler]("feed.Handler")
)

// Private dependency tokens - internal to feed module
var (
	Providers = di.NewToken[[]app.VenueProvider]("feed:providers")
	Binance   = di.NewToken[*binance.Provider]("feed:binance")
	EthClient = di.NewToken[*ethclient.Client]("feed:ethClient")
	Speech    = di.NewToken[*googletts.Synthesizer]("feed:speech")
)

// Helper functions for type-safe access
func GetService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, Service)
}

func GetHandler(c di.ServiceRegistry) *httpapi.Handler {
	return di.GetToken(c, Handler)
}

func GetProviders(c di.ServiceRegistry) []app.VenueProvider {
	return di.GetToken(c, Providers)
}

func GetBinance(c di.ServiceRegistry) *binance.Provider {
	return di.GetToken(c, Binance)
}

func GetEthClient(c di.ServiceRegistry) *ethclient.Client {
	return di.GetToken(c, EthClient)
}

func GetSpeech(c di.ServiceRegistry) *googletts.Synthesizer {
	return di.GetToken(c, Speech)
}
