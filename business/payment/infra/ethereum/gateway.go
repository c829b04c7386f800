package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/trader-sentinel/business/payment/app"
)

var _ app.Gateway = (*GatewayContract)(nil)

// GatewayContract is the on-chain payment gateway.
type GatewayContract struct {
	c *contract
}

// Address implements app.Gateway.
func (g *GatewayContract) Address() common.Address {
	return g.c.address
}

// PaySubscription implements app.Gateway.
func (g *GatewayContract) PaySubscription(ctx context.Context, token common.Address, amount *big.Int, packageID string) (app.PendingTx, error) {
	return g.c.transact(ctx, "paySubscription", token, amount, packageID)
}

// AddLiquidity implements app.Gateway.
func (g *GatewayContract) AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB *big.Int) (app.PendingTx, error) {
	return g.c.transact(ctx, "addLiquidity", tokenA, tokenB, amountA, amountB)
}

// Stake implements app.Gateway.
func (g *GatewayContract) Stake(ctx context.Context, amount *big.Int) (app.PendingTx, error) {
	return g.c.transact(ctx, "stake", amount)
}

// ClaimRewards implements app.Gateway.
func (g *GatewayContract) ClaimRewards(ctx context.Context) (app.PendingTx, error) {
	return g.c.transact(ctx, "claimRewards")
}
