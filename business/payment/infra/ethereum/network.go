// Package ethereum implements the payment collaborators against an EVM
// node: ERC20 tokens and the gateway contract.
package ethereum

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/trader-sentinel/business/payment/app"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

var _ app.Network = (*Network)(nil)

// Config configures a Network.
type Config struct {
	ChainID        uint64
	GatewayAddress common.Address
	Wallet         common.Address
	Wait           WaitConfig
}

// Network serves one configured chain.
type Network struct {
	cfg       Config
	backend   Backend
	submitter Submitter
	cb        *circuitbreaker.CircuitBreaker[[]byte]
	gateway   *GatewayContract
	logger    logger.LoggerInterface
}

// NewNetwork creates a Network for cfg.ChainID.
func NewNetwork(backend Backend, submitter Submitter, cfg Config, log logger.LoggerInterface) (*Network, error) {
	cbCfg := circuitbreaker.DefaultConfig(fmt.Sprintf("evm-%d", cfg.ChainID))
	cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from, "to", to)
	}

	n := &Network{
		cfg:       cfg,
		backend:   backend,
		submitter: submitter,
		cb:        circuitbreaker.New[[]byte](cbCfg),
		logger:    log,
	}

	c, err := newContract(cfg.GatewayAddress, GatewayABI, cfg.Wallet, backend, submitter, n.cb, cfg.Wait)
	if err != nil {
		return nil, err
	}
	n.gateway = &GatewayContract{c: c}

	return n, nil
}

// Ledger implements app.Network.
func (n *Network) Ledger(_ context.Context, chainID uint64, token asset.Token) (app.TokenLedger, error) {
	if err := n.checkChain(chainID); err != nil {
		return nil, err
	}
	if !token.IsDeployed() {
		return nil, apperror.New(apperror.CodeUnsupportedToken,
			apperror.WithMessage(fmt.Sprintf("%s contract is not deployed on chain %d", token.Symbol, chainID)))
	}

	c, err := newContract(token.Address, ERC20ABI, n.cfg.Wallet, n.backend, n.submitter, n.cb, n.cfg.Wait)
	if err != nil {
		return nil, err
	}
	return &ERC20Ledger{c: c}, nil
}

// Gateway implements app.Network.
func (n *Network) Gateway(_ context.Context, chainID uint64) (app.Gateway, error) {
	if err := n.checkChain(chainID); err != nil {
		return nil, err
	}
	if n.cfg.GatewayAddress == (common.Address{}) {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("payment gateway address is not configured"))
	}
	return n.gateway, nil
}

func (n *Network) checkChain(chainID uint64) error {
	if chainID != n.cfg.ChainID {
		return apperror.New(apperror.CodeUnsupportedChain,
			apperror.WithMessage(fmt.Sprintf("connected to chain %d, not %d", n.cfg.ChainID, chainID)))
	}
	return nil
}
