package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/trader-sentinel/business/payment/app"
)

var _ app.TokenLedger = (*ERC20Ledger)(nil)

// ERC20Ledger is an ERC20 token contract.
type ERC20Ledger struct {
	c *contract
}

// BalanceOf implements app.TokenLedger.
func (l *ERC20Ledger) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	out, err := l.c.call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return firstBig(out)
}

// Decimals implements app.TokenLedger.
func (l *ERC20Ledger) Decimals(ctx context.Context) (uint8, error) {
	out, err := l.c.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("unexpected output length: %d", len(out))
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("unexpected decimals type %T", out[0])
	}
	return d, nil
}

// Allowance implements app.TokenLedger.
func (l *ERC20Ledger) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	out, err := l.c.call(ctx, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return firstBig(out)
}

// Approve implements app.TokenLedger.
func (l *ERC20Ledger) Approve(ctx context.Context, spender common.Address, amount *big.Int) (app.PendingTx, error) {
	return l.c.transact(ctx, "approve", spender, amount)
}

func firstBig(out []any) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("unexpected output length: %d", len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", out[0])
	}
	return v, nil
}
