package uniswap

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

// fakeQuoter answers quoteExactInputSingle per fee tier and reverts for
// tiers it has no pool for.
type fakeQuoter struct {
	t       *testing.T
	p       *Provider
	tokenIn asset.Token
	out     asset.Token
	pools   map[int]*big.Int
	calls   int
}

func (f *fakeQuoter) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	require.NotNil(f.t, msg.To)
	assert.Equal(f.t, MainnetQuoterV2, *msg.To)

	amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(f.tokenIn.Decimals)), nil)
	for fee, amountOut := range f.pools {
		want, err := f.p.abi.Pack(quoteMethod, quoteParams{
			TokenIn:           f.tokenIn.Address,
			TokenOut:          f.out.Address,
			AmountIn:          amountIn,
			Fee:               big.NewInt(int64(fee)),
			SqrtPriceLimitX96: big.NewInt(0),
		})
		require.NoError(f.t, err)
		if bytes.Equal(want, msg.Data) {
			return f.p.abi.Methods[quoteMethod].Outputs.Pack(amountOut, big.NewInt(1), uint32(1), big.NewInt(120000))
		}
	}
	return nil, errors.New("execution reverted")
}

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func newTestProvider(t *testing.T, pools map[int]*big.Int) (*Provider, *fakeQuoter) {
	t.Helper()

	registry := asset.DefaultRegistry()
	wbtc, ok := registry.Token(asset.ChainIDEthereum, "WBTC")
	require.True(t, ok)
	usdt, ok := registry.Token(asset.ChainIDEthereum, "USDT")
	require.True(t, ok)

	fq := &fakeQuoter{t: t, tokenIn: wbtc, out: usdt, pools: pools}
	p, err := NewProvider(fq, registry, Config{}, testLogger())
	require.NoError(t, err)
	fq.p = p
	return p, fq
}

func TestProvider_Quote_BestFeeTier(t *testing.T) {
	p, fq := newTestProvider(t, map[int]*big.Int{
		FeeTier005: big.NewInt(65_010_500000),
		FeeTier030: big.NewInt(64_990_000000),
	})

	q, err := p.Quote(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	assert.Equal(t, marketDomain.VenueDEX, p.Kind())
	assert.Equal(t, Name, p.Name())
	require.True(t, q.Last.Valid)
	assert.True(t, q.Last.Decimal.Equal(decimal.RequireFromString("65010.5")), q.Last.Decimal.String())
	assert.Equal(t, "WBTC/USDT-500", q.Pair)
	assert.Equal(t, "ethereum", q.Chain)
	assert.Equal(t, dexID, q.Dex)
	assert.False(t, q.Bid.Valid)
	assert.False(t, q.Ask.Valid)
	assert.Equal(t, 4, fq.calls)
}

func TestProvider_Quote_NoPool(t *testing.T) {
	p, _ := newTestProvider(t, nil)

	_, err := p.Quote(context.Background(), "BTC/USDT")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeContractCallFailed))
	assert.Equal(t, "no pool found for token pair", apperror.Message(err))
}

func TestProvider_Quote_UnknownToken(t *testing.T) {
	p, fq := newTestProvider(t, nil)

	tests := []string{"DOGE/USDT", "BTC/XYZ", "BTCUSDT", "THRONOS/USDT"}
	for _, symbol := range tests {
		t.Run(symbol, func(t *testing.T) {
			_, err := p.Quote(context.Background(), symbol)
			require.Error(t, err)
			assert.True(t, apperror.IsCode(err, apperror.CodeUnknownSymbol))
		})
	}
	assert.Zero(t, fq.calls)
}
