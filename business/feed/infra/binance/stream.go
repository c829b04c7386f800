package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/wsconn"
)

const (
	tracerName = "binance"
	meterName  = "binance"

	BaseWSURL = "wss://stream.binance.com:9443"

	// Binance drops connections idle for longer than three minutes.
	keepAliveInterval = 2 * time.Minute
)

// StreamConfig holds websocket settings.
type StreamConfig struct {
	BaseURL      string
	Symbols      []string // compact symbols, e.g. BTCUSDT
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type streamMetrics struct {
	messages      metric.Int64Counter
	subscriptions metric.Int64UpDownCounter
	parseErrors   metric.Int64Counter
}

// Stream is a reconnecting bookTicker subscription.
type Stream struct {
	config StreamConfig
	logger logger.LoggerInterface

	conn   *wsconn.Client
	connMu sync.RWMutex

	onBookTicker func(*BookTickerEvent)
	handlersMu   sync.RWMutex

	subscriptions map[string]struct{}
	subsMu        sync.RWMutex
	nextID        atomic.Int64

	stopKeepAlive chan struct{}
	stopOnce      sync.Once

	tracer  trace.Tracer
	metrics *streamMetrics

	running atomic.Bool
}

// NewStream creates a Stream.
func NewStream(cfg StreamConfig, log logger.LoggerInterface) (*Stream, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseWSURL
	}

	s := &Stream{
		config:        cfg,
		logger:        log,
		subscriptions: make(map[string]struct{}),
		stopKeepAlive: make(chan struct{}),
		tracer:        otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return s, nil
}

func (s *Stream) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &streamMetrics{}

	s.metrics.messages, err = meter.Int64Counter(
		"binance_messages_total",
		metric.WithDescription("Total messages received"),
	)
	if err != nil {
		return err
	}

	s.metrics.subscriptions, err = meter.Int64UpDownCounter(
		"binance_subscriptions",
		metric.WithDescription("Active subscriptions"),
	)
	if err != nil {
		return err
	}

	s.metrics.parseErrors, err = meter.Int64Counter(
		"binance_parse_errors_total",
		metric.WithDescription("Message parse errors"),
	)
	if err != nil {
		return err
	}

	return nil
}

// OnBookTicker registers the bookTicker handler.
func (s *Stream) OnBookTicker(handler func(*BookTickerEvent)) {
	s.handlersMu.Lock()
	s.onBookTicker = handler
	s.handlersMu.Unlock()
}

// Connect dials the combined stream for the configured symbols, retrying
// until ctx ends.
func (s *Stream) Connect(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "binance.connect",
		trace.WithAttributes(attribute.StringSlice("symbols", s.config.Symbols)),
	)
	defer span.End()

	wsURL, err := s.buildStreamURL()
	if err != nil {
		return err
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "binance")
	if s.config.ReadTimeout > 0 {
		wsCfg.ReadTimeout = s.config.ReadTimeout
	}
	if s.config.WriteTimeout > 0 {
		wsCfg.WriteTimeout = s.config.WriteTimeout
	}

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("failed to create wsconn"))
	}
	conn.OnMessage(s.handleMessage)

	if err := conn.ConnectWithRetry(ctx); err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithCause(err),
			apperror.WithContext("failed to connect to Binance"))
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	s.subsMu.Lock()
	for _, sym := range s.config.Symbols {
		s.subscriptions[BookTickerStream(sym)] = struct{}{}
	}
	s.subsMu.Unlock()
	s.metrics.subscriptions.Add(ctx, int64(len(s.config.Symbols)))

	if s.running.CompareAndSwap(false, true) {
		go s.keepAlive(context.WithoutCancel(ctx))
	}

	s.logger.Info(ctx, "binance stream connected", "url", wsURL, "symbols", s.config.Symbols)
	return nil
}

func (s *Stream) buildStreamURL() (string, error) {
	if len(s.config.Symbols) == 0 {
		return "", apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("no symbols configured"))
	}

	streams := make([]string, 0, len(s.config.Symbols))
	for _, sym := range s.config.Symbols {
		streams = append(streams, BookTickerStream(sym))
	}

	u, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", apperror.New(apperror.CodeConfigurationError,
			apperror.WithCause(err),
			apperror.WithContext("binance websocket url"))
	}
	u.Path = "/stream"
	u.RawQuery = "streams=" + strings.Join(streams, "/")

	return u.String(), nil
}

func (s *Stream) handleMessage(ctx context.Context, data []byte) {
	s.metrics.messages.Add(ctx, 1)

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err != nil || event.Stream == "" {
		var resp WSResponse
		if json.Unmarshal(data, &resp) == nil && resp.ID != 0 {
			return
		}
		s.metrics.parseErrors.Add(ctx, 1)
		s.logger.Debug(ctx, "failed to parse message", "data", string(data[:min(len(data), 500)]))
		return
	}

	if !strings.HasSuffix(event.Stream, "@bookTicker") {
		return
	}

	var ticker BookTickerEvent
	if err := json.Unmarshal(event.Data, &ticker); err != nil {
		s.metrics.parseErrors.Add(ctx, 1)
		return
	}

	s.handlersMu.RLock()
	handler := s.onBookTicker
	s.handlersMu.RUnlock()
	if handler != nil {
		handler(&ticker)
	}
}

// Subscribed reports whether stream is part of the subscription set.
func (s *Stream) Subscribed(stream string) bool {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	_, ok := s.subscriptions[stream]
	return ok
}

// Subscribe adds streams on the live connection.
func (s *Stream) Subscribe(ctx context.Context, streams ...string) error {
	s.connMu.RLock()
	conn := s.conn
	s.connMu.RUnlock()

	if conn == nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithContext("not connected"))
	}

	req := WSRequest{
		Method: "SUBSCRIBE",
		Params: streams,
		ID:     s.nextID.Add(1),
	}
	if err := conn.SendJSON(ctx, req); err != nil {
		return err
	}

	s.subsMu.Lock()
	for _, st := range streams {
		s.subscriptions[st] = struct{}{}
	}
	s.subsMu.Unlock()

	s.metrics.subscriptions.Add(ctx, int64(len(streams)))
	return nil
}

func (s *Stream) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopKeepAlive:
			return
		case <-ticker.C:
			s.connMu.RLock()
			conn := s.conn
			s.connMu.RUnlock()

			if conn == nil {
				continue
			}
			req := WSRequest{Method: "LIST_SUBSCRIPTIONS", ID: s.nextID.Add(1)}
			if err := conn.SendJSON(ctx, req); err != nil {
				s.logger.Warn(ctx, "keep-alive failed", "error", err)
			}
		}
	}
}

// IsConnected reports whether the websocket is up.
func (s *Stream) IsConnected() bool {
	s.connMu.RLock()
	defer s.connMu.RUnlock()
	return s.conn != nil && s.conn.IsConnected()
}

// Close stops the keep-alive and closes the connection.
func (s *Stream) Close() error {
	s.stopOnce.Do(func() { close(s.stopKeepAlive) })
	s.running.Store(false)

	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
