package app

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"github.com/fd1az/trader-sentinel/internal/asset"
)

type mockNetwork struct {
	mock.Mock
}

func (m *mockNetwork) Ledger(ctx context.Context, chainID uint64, token asset.Token) (TokenLedger, error) {
	args := m.Called(ctx, chainID, token.Symbol)
	l, _ := args.Get(0).(TokenLedger)
	return l, args.Error(1)
}

func (m *mockNetwork) Gateway(ctx context.Context, chainID uint64) (Gateway, error) {
	args := m.Called(ctx, chainID)
	g, _ := args.Get(0).(Gateway)
	return g, args.Error(1)
}

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, owner)
	b, _ := args.Get(0).(*big.Int)
	return b, args.Error(1)
}

func (m *mockLedger) Decimals(ctx context.Context) (uint8, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint8), args.Error(1)
}

func (m *mockLedger) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	args := m.Called(ctx, owner, spender)
	a, _ := args.Get(0).(*big.Int)
	return a, args.Error(1)
}

func (m *mockLedger) Approve(ctx context.Context, spender common.Address, amount *big.Int) (PendingTx, error) {
	args := m.Called(ctx, spender, amount)
	tx, _ := args.Get(0).(PendingTx)
	return tx, args.Error(1)
}

type mockGateway struct {
	mock.Mock
	addr common.Address
}

func (m *mockGateway) Address() common.Address { return m.addr }

func (m *mockGateway) PaySubscription(ctx context.Context, token common.Address, amount *big.Int, packageID string) (PendingTx, error) {
	args := m.Called(ctx, token, amount, packageID)
	tx, _ := args.Get(0).(PendingTx)
	return tx, args.Error(1)
}

func (m *mockGateway) AddLiquidity(ctx context.Context, tokenA, tokenB common.Address, amountA, amountB *big.Int) (PendingTx, error) {
	args := m.Called(ctx, tokenA, tokenB, amountA, amountB)
	tx, _ := args.Get(0).(PendingTx)
	return tx, args.Error(1)
}

func (m *mockGateway) Stake(ctx context.Context, amount *big.Int) (PendingTx, error) {
	args := m.Called(ctx, amount)
	tx, _ := args.Get(0).(PendingTx)
	return tx, args.Error(1)
}

func (m *mockGateway) ClaimRewards(ctx context.Context) (PendingTx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(PendingTx)
	return tx, args.Error(1)
}

// doneTx is a transaction that is already final.
type doneTx struct {
	hash string
	err  error
}

func (t doneTx) Hash() string                 { return t.hash }
func (t doneTx) Wait(_ context.Context) error { return t.err }
