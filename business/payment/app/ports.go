// Package app contains application services and port definitions for the payment context.
package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/asset"
)

// PendingTx is a submitted transaction that can be awaited.
type PendingTx interface {
	// Hash returns the transaction handle reported to callers.
	Hash() string

	// Wait blocks until the transaction is final, failing if it reverted.
	Wait(ctx context.Context) error
}

// TokenLedger is one ERC20 token on one network.
type TokenLedger interface {
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
	Decimals(ctx context.Context) (uint8, error)
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, spender common.Address, amount *big.Int) (PendingTx, error)
}

// Gateway executes funding actions for the connected wallet.
type Gateway interface {
	// Address is the spender that token allowances are granted to.
	Address() common.Address

	PaySubscription(ctx context.Context, token common.Address, amount *big.Int, packageID string) (PendingTx, error)
	AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB *big.Int) (PendingTx, error)
	Stake(ctx context.Context, amount *big.Int) (PendingTx, error)
	ClaimRewards(ctx context.Context) (PendingTx, error)
}

// Network resolves the on-chain collaborators of a chain.
type Network interface {
	Ledger(ctx context.Context, chainID uint64, token asset.Token) (TokenLedger, error)
	Gateway(ctx context.Context, chainID uint64) (Gateway, error)
}

// GatewayQueries are the read-only gateway lookups keyed by address.
type GatewayQueries interface {
	Rewards(ctx context.Context, addr common.Address) (*domain.RewardsInfo, error)
	SubscriptionStatus(ctx context.Context, addr common.Address) (*domain.SubscriptionStatus, error)
	LiquidityPositions(ctx context.Context, addr common.Address) ([]domain.LiquidityPosition, error)
	StakingInfo(ctx context.Context, addr common.Address) (*domain.StakingInfo, error)
	ReferralLink(ctx context.Context, addr common.Address) (string, error)
}

// FiatPayments starts card checkouts handled outside the app.
type FiatPayments interface {
	CreateSession(ctx context.Context, req domain.FiatSessionRequest) (string, error)
}

// StateStore is the slice of application state the payment flows mutate.
type StateStore interface {
	WalletAddress() (common.Address, bool)
	SetSubscription(ctx context.Context, tier domain.Tier)
	PendingRewards() decimal.Decimal
	ClaimRewards(ctx context.Context)
}
