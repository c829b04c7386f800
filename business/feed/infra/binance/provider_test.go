package binance

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/logger"
)

const bookTickerMsg = `{"stream":"btcusdt@bookTicker","data":{"u":400900217,"s":"BTCUSDT","b":"64000.10","B":"1.5","a":"64000.20","A":"0.7"}}`

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func restServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/api/v3/ticker/24hr", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"symbol":"BTCUSDT","lastPrice":"63990","bidPrice":"63989.5","askPrice":"63990.5","closeTime":1700000000000}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsServer(t *testing.T, requests chan<- string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case requests <- r.URL.RawQuery:
		default:
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		ctx := context.Background()
		if err := conn.Write(ctx, websocket.MessageText, []byte(bookTickerMsg)); err != nil {
			return
		}
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_RESTOnly(t *testing.T) {
	var hits atomic.Int32
	rest := restServer(t, &hits)

	p, err := NewProvider(ProviderConfig{RESTURL: rest.URL}, testLogger())
	require.NoError(t, err)
	require.NoError(t, p.Connect(context.Background()))

	q, err := p.Quote(context.Background(), "BTC/USDT")
	require.NoError(t, err)

	assert.True(t, q.Bid.Decimal.Equal(decimal.RequireFromString("63989.5")))
	assert.True(t, q.Last.Decimal.Equal(decimal.RequireFromString("63990")))
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, Name, p.Name())
}

func TestProvider_StreamServesFreshBook(t *testing.T) {
	var hits atomic.Int32
	rest := restServer(t, &hits)
	requests := make(chan string, 4)
	ws := wsServer(t, requests)

	p, err := NewProvider(ProviderConfig{
		WebSocketURL: "ws" + strings.TrimPrefix(ws.URL, "http"),
		RESTURL:      rest.URL,
		Symbols:      []string{"BTC/USDT"},
		StaleTimeout: time.Minute,
		EnableStream: true,
	}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Connect(ctx))

	assert.Equal(t, "streams=btcusdt@bookTicker", <-requests)

	require.Eventually(t, func() bool {
		_, ok := p.fresh("BTCUSDT")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	q, err := p.Quote(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, q.Bid.Decimal.Equal(decimal.RequireFromString("64000.10")))
	assert.True(t, q.Ask.Decimal.Equal(decimal.RequireFromString("64000.20")))
	assert.False(t, q.Last.Valid)
	assert.Equal(t, int32(0), hits.Load())
}

func TestProvider_StaleBookFallsBackToREST(t *testing.T) {
	var hits atomic.Int32
	rest := restServer(t, &hits)

	p, err := NewProvider(ProviderConfig{RESTURL: rest.URL, StaleTimeout: time.Second}, testLogger())
	require.NoError(t, err)

	p.handleBookTicker(&BookTickerEvent{Symbol: "BTCUSDT", BidPrice: "1", AskPrice: "2"})
	p.now = func() time.Time { return time.Now().Add(time.Hour) }

	q, err := p.Quote(context.Background(), "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, q.Ask.Decimal.Equal(decimal.RequireFromString("63990.5")))
	assert.Equal(t, int32(1), hits.Load())
}

func TestProvider_RejectsMalformedSymbol(t *testing.T) {
	p, err := NewProvider(ProviderConfig{}, testLogger())
	require.NoError(t, err)

	_, err = p.Quote(context.Background(), "BTCUSDT")
	assert.Error(t, err)
}

func TestStream_HandleMessage(t *testing.T) {
	s, err := NewStream(StreamConfig{Symbols: []string{"BTCUSDT"}}, testLogger())
	require.NoError(t, err)

	var got []*BookTickerEvent
	s.OnBookTicker(func(ev *BookTickerEvent) { got = append(got, ev) })

	ctx := context.Background()
	s.handleMessage(ctx, []byte(`{"result":null,"id":1}`))
	s.handleMessage(ctx, []byte(`garbage`))
	s.handleMessage(ctx, []byte(`{"stream":"btcusdt@aggTrade","data":{}}`))
	s.handleMessage(ctx, []byte(bookTickerMsg))

	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)
	assert.Equal(t, "64000.10", got[0].BidPrice)
}

func TestStream_BuildStreamURL(t *testing.T) {
	s, err := NewStream(StreamConfig{Symbols: []string{"BTCUSDT", "ETHUSDT"}}, testLogger())
	require.NoError(t, err)

	u, err := s.buildStreamURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://stream.binance.com:9443/stream?streams=btcusdt@bookTicker/ethusdt@bookTicker", u)

	empty, err := NewStream(StreamConfig{}, testLogger())
	require.NoError(t, err)
	_, err = empty.buildStreamURL()
	assert.Error(t, err)
}
