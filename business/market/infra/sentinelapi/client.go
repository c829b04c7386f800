// Package sentinelapi is the client of the market data backend.
package sentinelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/market/app"
	"github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/httpclient"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "sentinelapi"

	defaultTimeout = 10 * time.Second

	healthPath   = "/health"
	snapshotPath = "/api/market/snapshot"
	arbPath      = "/api/market/arb"
	streamPath   = "/api/market/stream"
)

var (
	_ app.MarketDataSource = (*Client)(nil)
	_ app.SnapshotStreamer = (*Client)(nil)
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the market data REST API and its event stream.
type Client struct {
	client  httpclient.Client
	stream  httpclient.Client
	baseURL string
	cb      *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a Client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("sentinel-api"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	// Streams stay open until the context ends.
	stream, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("sentinel-api-stream"),
		httpclient.WithRequestTimeout(0),
		httpclient.WithTracer(tracer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create stream client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("sentinel-api")
	cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Client{
		client:  client,
		stream:  stream,
		baseURL: cfg.BaseURL,
		cb:      circuitbreaker.New[*httpclient.Response](cbCfg),
		logger:  log,
		tracer:  tracer,
	}, nil
}

type apiError struct {
	Error string `json:"error"`
}

func apiErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return fmt.Errorf("HTTP %d: %s", statusCode, e.Error)
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
}

func (c *Client) get(ctx context.Context, name, path, symbol string, result any) error {
	ctx, span := c.tracer.Start(ctx, "sentinelapi."+name,
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	resp, err := c.cb.Execute(func() (*httpclient.Response, error) {
		req := c.client.NewRequestWithOptions(
			httpclient.WithAttributes(attribute.String("endpoint", name)),
			httpclient.WithErrorHandler(apiErrorHandler),
		).SetResult(result)
		if symbol != "" {
			req = req.SetQueryParam("symbol", symbol)
		}
		return req.Get(ctx, path)
	})
	if err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodeMarketDataUnavailable,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s %s", name, symbol)))
	}

	if resp.Result() == nil {
		return apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext(fmt.Sprintf("%s: %s", name, string(resp.Body()))))
	}

	return nil
}

// Snapshot implements app.MarketDataSource.
func (c *Client) Snapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error) {
	var out domain.MarketSnapshot
	if err := c.get(ctx, "snapshot", snapshotPath, symbol, &out); err != nil {
		return domain.MarketSnapshot{}, err
	}
	if out.Symbol == "" {
		out.Symbol = symbol
	}
	return out, nil
}

// Arbitrage returns the server-computed view, including the DEX annotation.
func (c *Client) Arbitrage(ctx context.Context, symbol string) (domain.ArbitrageView, error) {
	var out domain.ArbitrageView
	if err := c.get(ctx, "arb", arbPath, symbol, &out); err != nil {
		return domain.ArbitrageView{}, err
	}
	return out, nil
}

type healthResponse struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

// Health implements app.MarketDataSource.
func (c *Client) Health(ctx context.Context) error {
	var out healthResponse
	if err := c.get(ctx, "health", healthPath, "", &out); err != nil {
		return err
	}
	if !out.OK {
		return apperror.New(apperror.CodeServiceUnavailable, apperror.WithContext("market api reports not ok"))
	}
	return nil
}
