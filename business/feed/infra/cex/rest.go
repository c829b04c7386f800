// Package cex quotes centralized exchanges over their public REST tickers.
package cex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/httpclient"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "cex"

	defaultTimeout = 15 * time.Second
)

// Config holds a venue's REST settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// restClient is the instrumented, circuit-broken transport shared by the
// venue adapters.
type restClient struct {
	venue  string
	client httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

func newRESTClient(venue string, cfg Config, log logger.LoggerInterface) (*restClient, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(venue),
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

	cbCfg := circuitbreaker.DefaultConfig(venue)
	cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &restClient{
		venue:  venue,
		client: client,
		cb:     circuitbreaker.New[*httpclient.Response](cbCfg),
		logger: log,
		tracer: tracer,
	}, nil
}

func (c *restClient) get(ctx context.Context, endpoint, path string, params map[string]string, result any, handler httpclient.ErrorHandler) error {
	ctx, span := c.tracer.Start(ctx, c.venue+"."+endpoint,
		trace.WithAttributes(attribute.String("venue", c.venue)),
	)
	defer span.End()

	resp, err := c.cb.Execute(func() (*httpclient.Response, error) {
		return c.client.NewRequestWithOptions(
			httpclient.WithAttributes(
				attribute.String("venue", c.venue),
				attribute.String("endpoint", endpoint),
			),
			httpclient.WithErrorHandler(handler),
		).
			SetQueryParams(params).
			SetResult(result).
			Get(ctx, path)
	})
	if err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodeVenueRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext(c.venue+" "+endpoint))
	}

	if resp.Result() == nil {
		return apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext(fmt.Sprintf("%s %s: %s", c.venue, endpoint, string(resp.Body()))))
	}

	return nil
}

// statusErrorHandler reports any 4xx/5xx response, preferring a message
// field extracted by msg.
func statusErrorHandler(msg func(body []byte) string) httpclient.ErrorHandler {
	return func(statusCode int, body []byte) error {
		if statusCode < 400 {
			return nil
		}
		if m := msg(body); m != "" {
			return fmt.Errorf("HTTP %d: %s", statusCode, m)
		}
		return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
	}
}

func jsonField(field string) func([]byte) string {
	return func(body []byte) string {
		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			return ""
		}
		s, _ := m[field].(string)
		return s
	}
}

// SplitSymbol splits a BASE/QUOTE symbol.
func SplitSymbol(symbol string) (base, quote string, err error) {
	base, quote, ok := strings.Cut(strings.ToUpper(strings.TrimSpace(symbol)), "/")
	if !ok || base == "" || quote == "" {
		return "", "", apperror.New(apperror.CodeUnknownSymbol,
			apperror.WithContext(fmt.Sprintf("expected BASE/QUOTE, got %q", symbol)))
	}
	return base, quote, nil
}

// CompactSymbol maps BTC/USDT to BTCUSDT.
func CompactSymbol(symbol string) (string, error) {
	base, quote, err := SplitSymbol(symbol)
	if err != nil {
		return "", err
	}
	return base + quote, nil
}
