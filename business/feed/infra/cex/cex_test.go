package cex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func jsonServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func assertPrice(t *testing.T, want string, got decimal.NullDecimal) {
	t.Helper()
	require.True(t, got.Valid, "price should be present")
	assert.True(t, got.Decimal.Equal(decimal.RequireFromString(want)), "got %s, want %s", got.Decimal, want)
}

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		in        string
		wantBase  string
		wantQuote string
		wantErr   bool
	}{
		{"BTC/USDT", "BTC", "USDT", false},
		{" eth/usdc ", "ETH", "USDC", false},
		{"BTCUSDT", "", "", true},
		{"/USDT", "", "", true},
		{"BTC/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, quote, err := SplitSymbol(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsCode(err, apperror.CodeUnknownSymbol))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, base)
			assert.Equal(t, tt.wantQuote, quote)
		})
	}
}

func TestTicker24h_Quote(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ticker24hPath, r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		io.WriteString(w, `{"symbol":"BTCUSDT","lastPrice":"64010.5","bidPrice":"64010.1","askPrice":"64010.9","closeTime":1700000000000}`)
	})

	p, err := NewMEXC(Config{BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "mexc", p.Name())

	q, err := p.Quote(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	assertPrice(t, "64010.5", q.Last)
	assertPrice(t, "64010.1", q.Bid)
	assertPrice(t, "64010.9", q.Ask)
	assert.Equal(t, int64(1700000000000), q.Timestamp)
}

func TestTicker24h_ErrorBody(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	})

	p, err := NewTicker24h("binance", Config{BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	_, err = p.Quote(context.Background(), "FOO/BAR")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeVenueRequestFailed))
	assert.Equal(t, "HTTP 400: Invalid symbol.", apperror.Message(err))
}

func TestTicker24h_Malformed(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	})

	p, err := NewTicker24h("binance", Config{BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	_, err = p.Quote(context.Background(), "BTC/USDT")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeMalformedResponse))
}

func TestBybit_Quote(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  apperror.Code
		wantBid  string
		wantLast string
	}{
		{
			name:     "ok",
			body:     `{"retCode":0,"retMsg":"OK","result":{"list":[{"symbol":"ETHUSDT","lastPrice":"3400.2","bid1Price":"3400.1","ask1Price":"3400.3"}]},"time":1700000000001}`,
			wantBid:  "3400.1",
			wantLast: "3400.2",
		},
		{
			name:    "api_error",
			body:    `{"retCode":10001,"retMsg":"Not supported symbols","result":{"list":[]}}`,
			wantErr: apperror.CodeVenueRequestFailed,
		},
		{
			name:    "empty_list",
			body:    `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
			wantErr: apperror.CodeUnknownSymbol,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, bybitTickersPath, r.URL.Path)
				assert.Equal(t, "spot", r.URL.Query().Get("category"))
				assert.Equal(t, "ETHUSDT", r.URL.Query().Get("symbol"))
				io.WriteString(w, tt.body)
			})

			p, err := NewBybit(Config{BaseURL: srv.URL}, testLogger())
			require.NoError(t, err)

			q, err := p.Quote(context.Background(), "ETH/USDT")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, apperror.GetCode(err))
				return
			}
			require.NoError(t, err)
			assertPrice(t, tt.wantBid, q.Bid)
			assertPrice(t, tt.wantLast, q.Last)
			assert.Equal(t, int64(1700000000001), q.Timestamp)
		})
	}
}

func TestOKX_Quote(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, okxTickerPath, r.URL.Path)
		assert.Equal(t, "SOL-USDT", r.URL.Query().Get("instId"))
		io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"SOL-USDT","last":"150.1","bidPx":"150.05","askPx":"150.15","ts":"1700000000002"}]}`)
	})

	p, err := NewOKX(Config{BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	q, err := p.Quote(context.Background(), "SOL/USDT")
	require.NoError(t, err)

	assertPrice(t, "150.05", q.Bid)
	assertPrice(t, "150.15", q.Ask)
	assert.Equal(t, int64(1700000000002), q.Timestamp)
}

func TestOKX_EmptyPriceFieldsAreNull(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":"0","msg":"","data":[{"instId":"NEW-USDT","last":"1","bidPx":"","askPx":"","ts":"0"}]}`)
	})

	p, err := NewOKX(Config{BaseURL: srv.URL}, testLogger())
	require.NoError(t, err)

	q, err := p.Quote(context.Background(), "NEW/USDT")
	require.NoError(t, err)
	assert.False(t, q.Bid.Valid)
	assert.False(t, q.Ask.Valid)
	assert.True(t, q.Last.Valid)
}
