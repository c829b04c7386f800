package wsconn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/apperror"
)

// newServer accepts every upgrade and hands the conn to serve. The conn is
// closed when serve returns.
func newServer(t *testing.T, serve func(conn *websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()
		serve(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

// hold keeps the connection open until the peer goes away, echoing frames.
func hold(conn *websocket.Conn) {
	ctx := context.Background()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if err := conn.Write(ctx, typ, data); err != nil {
			return
		}
	}
}

func testConfig(url string) Config {
	cfg := DefaultConfig(url, "test-stream")
	cfg.PingInterval = 0
	cfg.InitialBackoff = 20 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	return cfg
}

func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()
	return url
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeConfigurationError))
}

func TestNew_NormalizesBackoff(t *testing.T) {
	c, err := New(Config{URL: "ws://example", MaxBackoff: time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, time.Second, c.config.InitialBackoff)
	assert.Equal(t, time.Second, c.config.MaxBackoff)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestClient_Connect(t *testing.T) {
	_, url := newServer(t, hold)

	c, err := New(testConfig(url))
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx))
	assert.True(t, c.IsConnected())
	assert.Equal(t, 0, c.Reconnects())
}

func TestClient_ConnectFailure(t *testing.T) {
	c, err := New(testConfig(deadURL(t)))
	require.NoError(t, err)
	defer c.Close()

	var states []State
	c.OnStateChange(func(s State, _ error) { states = append(states, s) })

	err = c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeWebSocketConnectionError))
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, []State{StateConnecting, StateDisconnected}, states)
}

func TestClient_ConnectWithRetry(t *testing.T) {
	t.Run("gives_up_after_max_reconnects", func(t *testing.T) {
		cfg := testConfig(deadURL(t))
		cfg.MaxReconnects = 2

		c, err := New(cfg)
		require.NoError(t, err)
		defer c.Close()

		var attempts atomic.Int32
		c.OnStateChange(func(s State, _ error) {
			if s == StateConnecting {
				attempts.Add(1)
			}
		})

		err = c.ConnectWithRetry(context.Background())
		require.Error(t, err)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("stops_on_context", func(t *testing.T) {
		c, err := New(testConfig(deadURL(t)))
		require.NoError(t, err)
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		err = c.ConnectWithRetry(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("closed_client", func(t *testing.T) {
		_, url := newServer(t, hold)
		c, err := New(testConfig(url))
		require.NoError(t, err)
		require.NoError(t, c.Close())

		err = c.ConnectWithRetry(context.Background())
		assert.True(t, apperror.IsCode(err, apperror.CodeWebSocketClosed))
	})
}

func TestClient_DeliversMessages(t *testing.T) {
	_, url := newServer(t, func(conn *websocket.Conn) {
		ctx := context.Background()
		for _, m := range []string{`{"s":"BTCUSDT"}`, `{"s":"ETHUSDT"}`} {
			if err := conn.Write(ctx, websocket.MessageText, []byte(m)); err != nil {
				return
			}
		}
		hold(conn)
	})

	c, err := New(testConfig(url))
	require.NoError(t, err)
	defer c.Close()

	got := make(chan string, 2)
	c.OnMessage(func(_ context.Context, msg []byte) { got <- string(msg) })

	require.NoError(t, c.Connect(context.Background()))

	for _, want := range []string{`{"s":"BTCUSDT"}`, `{"s":"ETHUSDT"}`} {
		select {
		case msg := <-got:
			assert.Equal(t, want, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestClient_SendJSON(t *testing.T) {
	_, url := newServer(t, hold)

	c, err := New(testConfig(url))
	require.NoError(t, err)
	defer c.Close()

	echoed := make(chan []byte, 1)
	c.OnMessage(func(_ context.Context, msg []byte) { echoed <- msg })

	require.NoError(t, c.Connect(context.Background()))

	sub := map[string]any{"method": "SUBSCRIBE", "params": []string{"btcusdt@bookTicker"}, "id": 1}
	require.NoError(t, c.SendJSON(context.Background(), sub))

	select {
	case msg := <-echoed:
		var back map[string]any
		require.NoError(t, json.Unmarshal(msg, &back))
		assert.Equal(t, "SUBSCRIBE", back["method"])
	case <-time.After(2 * time.Second):
		t.Fatal("no echo")
	}
}

func TestClient_SendJSONEncodeError(t *testing.T) {
	c, err := New(testConfig("ws://unused"))
	require.NoError(t, err)
	defer c.Close()

	err = c.SendJSON(context.Background(), map[string]any{"bad": make(chan int)})
	assert.True(t, apperror.IsCode(err, apperror.CodeWebSocketSendError))
}

func TestClient_SendNotConnected(t *testing.T) {
	c, err := New(testConfig("ws://unused"))
	require.NoError(t, err)
	defer c.Close()

	err = c.Send(context.Background(), []byte("ping"))
	assert.True(t, apperror.IsCode(err, apperror.CodeWebSocketSendError))
}

func TestClient_ConcurrentSend(t *testing.T) {
	var received atomic.Int32
	_, url := newServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.Read(context.Background()); err != nil {
				return
			}
			received.Add(1)
		}
	})

	c, err := New(testConfig(url))
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Connect(context.Background()))

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.SendJSON(context.Background(), map[string]int{"id": i}))
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return received.Load() == 10 }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_RedialsAfterDrop(t *testing.T) {
	var conns atomic.Int32
	_, url := newServer(t, func(conn *websocket.Conn) {
		if conns.Add(1) == 1 {
			return
		}
		hold(conn)
	})

	c, err := New(testConfig(url))
	require.NoError(t, err)
	defer c.Close()

	var mu sync.Mutex
	var states []State
	c.OnStateChange(func(s State, _ error) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	require.NoError(t, c.Connect(context.Background()))

	assert.Eventually(t, func() bool {
		return c.Reconnects() == 1 && c.IsConnected()
	}, 3*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, states, StateReconnecting)
	assert.Equal(t, StateConnected, states[len(states)-1])
}

func TestClient_Close(t *testing.T) {
	_, url := newServer(t, hold)

	c, err := New(testConfig(url))
	require.NoError(t, err)
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, StateClosed, c.State())
	assert.False(t, c.IsConnected())

	err = c.Connect(context.Background())
	assert.True(t, apperror.IsCode(err, apperror.CodeWebSocketClosed))
	// No redial after Close.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, StateClosed, c.State())
}

func TestJitter(t *testing.T) {
	for _, d := range []time.Duration{0, time.Millisecond, time.Second} {
		for range 50 {
			j := jitter(d)
			assert.GreaterOrEqual(t, j, d)
			assert.LessOrEqual(t, j, d+d/5)
		}
	}
}
