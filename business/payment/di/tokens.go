// Package di contains dependency injection tokens for the payment context.
package di

import (
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/trader-sentinel/business/payment/app"
	"github.com/fd1az/trader-sentinel/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PaymentService = di.NewToken[*app.Service]("payment.Service")
	Sequencer      = di.NewToken[*app.Sequencer]("payment.Sequencer")
)

// Private dependency tokens - internal to payment module
var (
	Network    = di.NewToken[app.Network]("payment:network")
	EthClient  = di.NewToken[*ethclient.Client]("payment:ethClient")
	GatewayAPI = di.NewToken[GatewayClient]("payment:gatewayAPI")
)

// GatewayClient is the off-chain gateway client.
type GatewayClient interface {
	app.GatewayQueries
	app.FiatPayments
}

// Helper functions for type-safe access
func GetPaymentService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, PaymentService)
}

func GetSequencer(c di.ServiceRegistry) *app.Sequencer {
	return di.GetToken(c, Sequencer)
}

func GetNetwork(c di.ServiceRegistry) app.Network {
	return di.GetToken(c, Network)
}

func GetEthClient(c di.ServiceRegistry) *ethclient.Client {
	return di.GetToken(c, EthClient)
}

func GetGatewayAPI(c di.ServiceRegistry) GatewayClient {
	return di.GetToken(c, GatewayAPI)
}
