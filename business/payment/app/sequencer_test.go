package app

import (
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

var (
	payer   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	spender = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	usdtETH = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	usdcETH = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

func bigEq(want *big.Int) any {
	return mock.MatchedBy(func(got *big.Int) bool { return got != nil && got.Cmp(want) == 0 })
}

func units(s string, decimals uint8) *big.Int {
	v, err := asset.ToBaseUnits(s, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

type fixture struct {
	network     *mockNetwork
	gateway     *mockGateway
	ledgers     map[string]*mockLedger
	transitions []domain.Transition
	seq         *Sequencer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		network: &mockNetwork{},
		gateway: &mockGateway{addr: spender},
		ledgers: map[string]*mockLedger{},
	}
	f.network.On("Gateway", mock.Anything, asset.ChainIDEthereum).Return(f.gateway, nil).Maybe()

	seq, err := NewSequencer(f.network, asset.DefaultRegistry(),
		logger.New(io.Discard, logger.LevelError, "test", nil),
		WithObserver(func(tr domain.Transition) { f.transitions = append(f.transitions, tr) }),
	)
	require.NoError(t, err)
	f.seq = seq

	return f
}

// ledger registers a mock ledger for symbol with the given balance and
// allowance, both in token units.
func (f *fixture) ledger(symbol string, decimals uint8, balance, allowance string) *mockLedger {
	l := &mockLedger{}
	l.On("Decimals", mock.Anything).Return(decimals, nil).Maybe()
	l.On("BalanceOf", mock.Anything, payer).Return(units(balance, decimals), nil).Maybe()
	l.On("Allowance", mock.Anything, payer, spender).Return(units(allowance, decimals), nil).Maybe()
	f.ledgers[symbol] = l
	f.network.On("Ledger", mock.Anything, asset.ChainIDEthereum, symbol).Return(l, nil).Maybe()
	return l
}

func (f *fixture) states() []domain.State {
	out := make([]domain.State, 0, len(f.transitions))
	for _, tr := range f.transitions {
		out = append(out, tr.To)
	}
	return out
}

func TestExecuteAction_Stake(t *testing.T) {
	tests := []struct {
		name    string
		stakeTx PendingTx
		err     error
		want    domain.PaymentResult
	}{
		{
			name:    "success carries handle",
			stakeTx: doneTx{hash: "0xabc"},
			want:    domain.PaymentResult{Success: true, Handle: "0xabc"},
		},
		{
			name: "collaborator message reported verbatim",
			err:  errors.New("insufficient balance"),
			want: domain.PaymentResult{Success: false, Error: "insufficient balance"},
		},
		{
			name: "empty message uses fallback",
			err:  errors.New(""),
			want: domain.PaymentResult{Success: false, Error: "Staking failed"},
		},
		{
			name: "no transaction and no error uses fallback",
			want: domain.PaymentResult{Success: false, Error: "Staking failed"},
		},
		{
			name:    "reverted on wait",
			stakeTx: doneTx{hash: "0xdead", err: errors.New("execution reverted")},
			want:    domain.PaymentResult{Success: false, Error: "execution reverted"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gateway.On("Stake", mock.Anything, bigEq(units("10", 18))).Return(tt.stakeTx, tt.err).Once()

			got := f.seq.ExecuteAction(context.Background(), domain.ActionStake,
				domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, Amount: "10"})

			assert.Equal(t, tt.want, got)
			f.gateway.AssertExpectations(t)
			f.network.AssertNotCalled(t, "Ledger", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecuteAction_PaySubscription_SkipsApprovalWhenCovered(t *testing.T) {
	f := newFixture(t)
	usdt := f.ledger("USDT", 6, "500", "99")
	f.gateway.On("PaySubscription", mock.Anything, usdtETH, bigEq(units("99", 6)), "pro").
		Return(doneTx{hash: "0x01"}, nil).Once()

	got := f.seq.ExecuteAction(context.Background(), domain.ActionPaySubscription, domain.PaymentRequest{
		Payer:     payer,
		ChainID:   asset.ChainIDEthereum,
		PackageID: domain.TierPro,
		Token:     "USDT",
	})

	assert.Equal(t, domain.Succeeded("0x01"), got)
	usdt.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []domain.State{
		domain.StateCheckingAllowance,
		domain.StateExecuting,
		domain.StateConfirmed,
	}, f.states())
}

func TestExecuteAction_PaySubscription_ApprovesShortfall(t *testing.T) {
	f := newFixture(t)
	usdt := f.ledger("USDT", 6, "500", "10")
	usdt.On("Approve", mock.Anything, spender, bigEq(units("99", 6))).Return(doneTx{hash: "0xaa"}, nil).Once()
	f.gateway.On("PaySubscription", mock.Anything, usdtETH, bigEq(units("99", 6)), "pro").
		Return(doneTx{hash: "0x02"}, nil).Once()

	got := f.seq.ExecuteAction(context.Background(), domain.ActionPaySubscription, domain.PaymentRequest{
		Payer:     payer,
		ChainID:   asset.ChainIDEthereum,
		PackageID: domain.TierPro,
		Token:     "usdt",
	})

	assert.Equal(t, domain.Succeeded("0x02"), got)
	usdt.AssertExpectations(t)
	assert.Equal(t, []domain.State{
		domain.StateCheckingAllowance,
		domain.StateApproving,
		domain.StateExecuting,
		domain.StateConfirmed,
	}, f.states())
	assert.Equal(t, "USDT", f.transitions[1].Token)
}

func TestExecuteAction_PaySubscription_Failures(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.PaymentRequest
		setup   func(f *fixture)
		wantErr string
	}{
		{
			name:    "wallet not connected",
			req:     domain.PaymentRequest{ChainID: asset.ChainIDEthereum, PackageID: domain.TierPro, Token: "USDT"},
			wantErr: "Wallet not connected",
		},
		{
			name:    "unknown package",
			req:     domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, PackageID: "gold", Token: "USDT"},
			wantErr: "Unknown subscription package",
		},
		{
			name:    "token not on chain",
			req:     domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, PackageID: domain.TierPro, Token: "BUSD"},
			wantErr: "Token not supported on this chain",
		},
		{
			name: "insufficient balance",
			req:  domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, PackageID: domain.TierPro, Token: "USDT"},
			setup: func(f *fixture) {
				f.ledger("USDT", 6, "50", "0")
			},
			wantErr: "insufficient USDT balance",
		},
		{
			name: "approval rejected",
			req:  domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, PackageID: domain.TierPro, Token: "USDT"},
			setup: func(f *fixture) {
				f.ledger("USDT", 6, "500", "0").
					On("Approve", mock.Anything, spender, mock.Anything).Return(nil, errors.New("user rejected transaction"))
			},
			wantErr: "user rejected transaction",
		},
		{
			name: "execution without message",
			req:  domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum, PackageID: domain.TierPro, Token: "USDT"},
			setup: func(f *fixture) {
				f.ledger("USDT", 6, "500", "500")
				f.gateway.On("PaySubscription", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New(""))
			},
			wantErr: "Payment failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			got := f.seq.ExecuteAction(context.Background(), domain.ActionPaySubscription, tt.req)

			assert.False(t, got.Success)
			assert.Equal(t, tt.wantErr, got.Error)
			assert.Empty(t, got.Handle)

			states := f.states()
			require.NotEmpty(t, states)
			assert.Equal(t, domain.StateFailed, states[len(states)-1])
		})
	}
}

func TestExecuteAction_PaySubscription_ThronosPrice(t *testing.T) {
	f := newFixture(t)
	f.ledger("THRONOS", 18, "1000", "1000")
	f.gateway.On("PaySubscription", mock.Anything, common.Address{}, bigEq(units("79", 18)), "pro").
		Return(doneTx{hash: "0x03"}, nil).Once()

	got := f.seq.ExecuteAction(context.Background(), domain.ActionPaySubscription, domain.PaymentRequest{
		Payer:     payer,
		ChainID:   asset.ChainIDEthereum,
		PackageID: domain.TierPro,
		Token:     "THRONOS",
	})

	assert.True(t, got.Success)
	f.gateway.AssertExpectations(t)
}

func TestExecuteAction_AddLiquidity(t *testing.T) {
	t.Run("approves both tokens in order", func(t *testing.T) {
		f := newFixture(t)
		a := f.ledger("USDT", 6, "1000", "0")
		b := f.ledger("USDC", 6, "1000", "0")
		a.On("Approve", mock.Anything, spender, bigEq(units("100", 6))).Return(doneTx{hash: "0xa"}, nil).Once()
		b.On("Approve", mock.Anything, spender, bigEq(units("200", 6))).Return(doneTx{hash: "0xb"}, nil).Once()
		f.gateway.On("AddLiquidity", mock.Anything, usdtETH, usdcETH, bigEq(units("100", 6)), bigEq(units("200", 6))).
			Return(doneTx{hash: "0xlp"}, nil).Once()

		got := f.seq.ExecuteAction(context.Background(), domain.ActionAddLiquidity, domain.PaymentRequest{
			Payer: payer, ChainID: asset.ChainIDEthereum,
			Token: "USDT", Amount: "100", TokenB: "USDC", AmountB: "200",
		})

		assert.Equal(t, domain.Succeeded("0xlp"), got)
		a.AssertExpectations(t)
		b.AssertExpectations(t)

		var approved []string
		for _, tr := range f.transitions {
			if tr.To == domain.StateApproving {
				approved = append(approved, tr.Token)
			}
		}
		assert.Equal(t, []string{"USDT", "USDC"}, approved)
	})

	t.Run("token B approval failure stops before execution", func(t *testing.T) {
		f := newFixture(t)
		a := f.ledger("USDT", 6, "1000", "0")
		b := f.ledger("USDC", 6, "1000", "0")
		a.On("Approve", mock.Anything, spender, mock.Anything).Return(doneTx{hash: "0xa"}, nil).Once()
		b.On("Approve", mock.Anything, spender, mock.Anything).Return(nil, errors.New("approval denied")).Once()

		got := f.seq.ExecuteAction(context.Background(), domain.ActionAddLiquidity, domain.PaymentRequest{
			Payer: payer, ChainID: asset.ChainIDEthereum,
			Token: "USDT", Amount: "100", TokenB: "USDC", AmountB: "200",
		})

		assert.Equal(t, domain.PaymentResult{Success: false, Error: "approval denied"}, got)
		a.AssertExpectations(t)
		f.gateway.AssertNotCalled(t, "AddLiquidity", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestExecuteAction_ClaimRewards(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("ClaimRewards", mock.Anything).Return(nil, errors.New("")).Once()

	got := f.seq.ExecuteAction(context.Background(), domain.ActionClaimRewards,
		domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum})

	assert.Equal(t, domain.PaymentResult{Success: false, Error: "Claim failed"}, got)
	assert.Equal(t, []domain.State{domain.StateExecuting, domain.StateFailed}, f.states())
}

func TestExecuteAction_CollaboratorPanicIsReported(t *testing.T) {
	f := newFixture(t)
	f.gateway.On("ClaimRewards", mock.Anything).
		Run(func(mock.Arguments) { panic("rpc client closed") }).
		Return(nil, nil).Once()

	var got domain.PaymentResult
	require.NotPanics(t, func() {
		got = f.seq.ExecuteAction(context.Background(), domain.ActionClaimRewards,
			domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum})
	})

	assert.Equal(t, domain.PaymentResult{Success: false, Error: "Claim failed"}, got)
	assert.Equal(t, []domain.State{domain.StateExecuting, domain.StateFailed}, f.states())
}

func TestExecuteAction_UnknownKind(t *testing.T) {
	f := newFixture(t)

	got := f.seq.ExecuteAction(context.Background(), domain.ActionKind("withdraw"),
		domain.PaymentRequest{Payer: payer, ChainID: asset.ChainIDEthereum})

	assert.Equal(t, domain.PaymentResult{Success: false, Error: "Unknown error"}, got)
}
