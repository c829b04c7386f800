package dexscreener

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

func newTestProvider(t *testing.T, status int, body string) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, searchPath, r.URL.Path)
		assert.Equal(t, "WBTC USDC", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{BaseURL: srv.URL}, logger.New(io.Discard, logger.LevelError, "test", nil))
	require.NoError(t, err)
	return p
}

func TestProvider_PicksMostLiquidPair(t *testing.T) {
	body := `{"pairs":[
		{"chainId":"ethereum","dexId":"uniswap","pairAddress":"0xaaa","priceUsd":"64000.1","liquidity":{"usd":1000}},
		{"chainId":"arbitrum","dexId":"camelot","pairAddress":"0xbbb","priceUsd":"64001.5","liquidity":{"usd":250000.5}},
		{"chainId":"base","dexId":"aerodrome","url":"https://dexscreener.com/base/0xccc","priceUsd":"63999","liquidity":{"usd":250000.5}},
		{"chainId":"bsc","dexId":"pancake","pairAddress":"0xddd","priceUsd":"1"}
	]}`
	p := newTestProvider(t, http.StatusOK, body)

	q, err := p.Quote(context.Background(), "WBTC/USDC")
	require.NoError(t, err)

	require.True(t, q.Last.Valid)
	assert.True(t, q.Last.Decimal.Equal(decimal.RequireFromString("64001.5")))
	assert.Equal(t, "0xbbb", q.Pair)
	assert.Equal(t, "arbitrum", q.Chain)
	assert.Equal(t, "camelot", q.Dex)
	require.True(t, q.LiquidityUSD.Valid)
	assert.True(t, q.LiquidityUSD.Decimal.Equal(decimal.RequireFromString("250000.5")))
	assert.Equal(t, marketDomain.VenueDEX, p.Kind())
}

func TestProvider_NoPairsIsEmptyQuote(t *testing.T) {
	p := newTestProvider(t, http.StatusOK, `{"schemaVersion":"1.0.0","pairs":[]}`)

	q, err := p.Quote(context.Background(), "WBTC/USDC")
	require.NoError(t, err)
	assert.False(t, q.Last.Valid)
	assert.False(t, q.Failed())
}

func TestProvider_HTTPError(t *testing.T) {
	p := newTestProvider(t, http.StatusTooManyRequests, `rate limited`)

	_, err := p.Quote(context.Background(), "WBTC/USDC")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeVenueRequestFailed))
	assert.Equal(t, "HTTP 429: rate limited", apperror.Message(err))
}

func TestProvider_PairURLFallback(t *testing.T) {
	p := newTestProvider(t, http.StatusOK, `{"pairs":[{"chainId":"base","url":"https://dexscreener.com/base/0xccc","priceUsd":"2"}]}`)

	q, err := p.Quote(context.Background(), "WBTC/USDC")
	require.NoError(t, err)
	assert.Equal(t, "https://dexscreener.com/base/0xccc", q.Pair)
	assert.False(t, q.LiquidityUSD.Valid)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "BTC USDT", Query("BTC/USDT"))
	assert.Equal(t, "ETH", Query(" ETH "))
}
