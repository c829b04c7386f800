// Package payment implements the payment and liquidity bounded context.
package payment

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	accountDI "github.com/fd1az/trader-sentinel/business/account/di"
	"github.com/fd1az/trader-sentinel/business/payment/app"
	paymentDI "github.com/fd1az/trader-sentinel/business/payment/di"
	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/business/payment/infra/ethereum"
	"github.com/fd1az/trader-sentinel/business/payment/infra/simulated"
	"github.com/fd1az/trader-sentinel/business/payment/infra/thronosapi"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/monolith"
	"github.com/fd1az/trader-sentinel/pkg/ui"
)

// Module implements the payment bounded context.
type Module struct{}

// RegisterServices registers all payment services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register EthClient - private dependency, dialed only in ethereum mode
	di.RegisterToken(c, paymentDI.EthClient, func(sr di.ServiceRegistry) *ethclient.Client {
		cfg := sr.Get("config").(*config.Config)

		client, err := ethclient.Dial(cfg.Payment.RPCURL)
		if err != nil {
			panic("failed to dial ethereum rpc: " + err.Error())
		}
		return client
	})

	// Register Network by wallet mode - private dependency
	di.RegisterToken(c, paymentDI.Network, func(sr di.ServiceRegistry) app.Network {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		if cfg.Payment.WalletMode != config.WalletEthereum {
			return simulated.NewNetwork(simulated.Config{
				Wallet:  cfg.Payment.WalletAddressHex(),
				Gateway: cfg.Payment.GatewayAddressHex(),
			}, registry, log)
		}

		client := paymentDI.GetEthClient(sr)
		network, err := ethereum.NewNetwork(client, ethereum.NewRPCSubmitter(client.Client()), ethereum.Config{
			ChainID:        cfg.Payment.ChainID,
			GatewayAddress: cfg.Payment.GatewayAddressHex(),
			Wallet:         cfg.Payment.WalletAddressHex(),
			Wait: ethereum.WaitConfig{
				PollInterval: cfg.Payment.ReceiptPollInterval,
				Timeout:      cfg.Payment.ReceiptTimeout,
			},
		}, log)
		if err != nil {
			panic("failed to create ethereum network: " + err.Error())
		}
		return network
	})

	// Register GatewayAPI (thronos REST) - private dependency
	di.RegisterToken(c, paymentDI.GatewayAPI, func(sr di.ServiceRegistry) paymentDI.GatewayClient {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := thronosapi.NewClient(thronosapi.Config{
			BaseURL: cfg.Payment.GatewayURL,
			Timeout: cfg.Payment.RequestTimeout,
		}, log)
		if err != nil {
			panic("failed to create gateway client: " + err.Error())
		}
		return client
	})

	// Register Sequencer (public)
	di.RegisterToken(c, paymentDI.Sequencer, func(sr di.ServiceRegistry) *app.Sequencer {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		var opts []app.SequencerOption
		if cfg.Market.TUIMode {
			opts = append(opts, app.WithObserver(func(t domain.Transition) {
				ui.Send(ui.TransitionMsg{Transition: t})
			}))
		}

		seq, err := app.NewSequencer(paymentDI.GetNetwork(sr), registry, log, opts...)
		if err != nil {
			panic("failed to create sequencer: " + err.Error())
		}
		return seq
	})

	// Register PaymentService (public - exposed to other modules)
	di.RegisterToken(c, paymentDI.PaymentService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		gw := paymentDI.GetGatewayAPI(sr)

		return app.NewService(
			paymentDI.GetSequencer(sr),
			accountDI.GetStore(sr),
			gw, gw,
			app.ServiceConfig{
				ChainID:  cfg.Payment.ChainID,
				CacheTTL: cfg.Payment.QueryCacheTTL,
			},
			log,
		)
	})

	return nil
}

// Startup connects the configured wallet to the state store.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()
	sr := mono.Services()

	network := paymentDI.GetNetwork(sr)
	wallet := cfg.Payment.WalletAddressHex()
	if sim, ok := network.(*simulated.Network); ok {
		wallet = sim.Wallet()
	} else {
		client := paymentDI.GetEthClient(sr)
		mono.OnClose(func() error {
			client.Close()
			return nil
		})
	}

	if wallet != (common.Address{}) {
		accountDI.GetStore(sr).ConnectWallet(wallet, cfg.Payment.ChainID, decimal.Zero)
	}
	if cfg.Market.TUIMode {
		ui.Send(ui.StartupMsg{Step: "wallet", Status: "connected", Message: "wallet " + wallet.Hex()})
	}

	svc := paymentDI.GetPaymentService(sr)
	mono.OnClose(func() error {
		svc.Close()
		return nil
	})

	log.Info(ctx, "payment module started",
		"wallet_mode", cfg.Payment.WalletMode,
		"chain_id", cfg.Payment.ChainID,
		"wallet", wallet.Hex(),
		"actions", len(domain.Kinds))
	return nil
}
