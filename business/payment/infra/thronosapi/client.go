// Package thronosapi is the REST client for the payment gateway's
// off-chain endpoints.
package thronosapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/payment/app"
	"github.com/fd1az/trader-sentinel/business/payment/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/httpclient"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "thronosapi"

	defaultTimeout = 15 * time.Second

	fiatSessionPath  = "/api/fiat/create-session"
	rewardsPath      = "/api/rewards/"
	subscriptionPath = "/api/subscription/"
	liquidityPath    = "/api/liquidity/"
	stakingPath      = "/api/staking/"
	referralPath     = "/api/referral/generate"
)

var (
	_ app.GatewayQueries = (*Client)(nil)
	_ app.FiatPayments   = (*Client)(nil)
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the gateway REST API.
type Client struct {
	client httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewClient creates a Client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("thronos-gateway"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer, httpclient.RecordResponseBody),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &Client{
		client: client,
		cb:     circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("thronos-gateway")),
		logger: log,
		tracer: tracer,
	}, nil
}

// apiError is the gateway's error body.
type apiError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

func gatewayErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Message != "" {
			return fmt.Errorf("%s", e.Message)
		}
		if e.Err != "" {
			return fmt.Errorf("%s", e.Err)
		}
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
}

// do executes a request through the breaker and decodes into result.
func (c *Client) do(ctx context.Context, name, method, path string, body, result any) error {
	ctx, span := c.tracer.Start(ctx, "thronosapi."+name,
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	resp, err := c.cb.Execute(func() (*httpclient.Response, error) {
		req := c.client.NewRequestWithOptions(
			httpclient.WithAttributes(attribute.String("endpoint", name)),
			httpclient.WithErrorHandler(gatewayErrorHandler),
		).SetResult(result)
		if body != nil {
			req = req.SetBody(body)
		}
		if method == http.MethodPost {
			return req.Post(ctx, path)
		}
		return req.Get(ctx, path)
	})
	if err != nil {
		span.RecordError(err)
		return apperror.New(apperror.CodeGatewayAPIError,
			apperror.WithCause(err),
			apperror.WithContext(name))
	}

	if resp.Result() == nil {
		return apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext(fmt.Sprintf("%s: %s", name, string(resp.Body()))))
	}

	return nil
}

// CreateSession implements app.FiatPayments.
func (c *Client) CreateSession(ctx context.Context, req domain.FiatSessionRequest) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, "fiat_session", http.MethodPost, fiatSessionPath, req, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", apperror.New(apperror.CodeMalformedResponse, apperror.WithContext("fiat session without url"))
	}
	return out.URL, nil
}

// Rewards implements app.GatewayQueries.
func (c *Client) Rewards(ctx context.Context, addr common.Address) (*domain.RewardsInfo, error) {
	var out domain.RewardsInfo
	if err := c.do(ctx, "rewards", http.MethodGet, rewardsPath+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// subscriptionWire carries expiresAt as a unix timestamp.
type subscriptionWire struct {
	Tier      string `json:"tier"`
	ExpiresAt int64  `json:"expiresAt"`
	AutoRenew bool   `json:"autoRenew"`
}

// SubscriptionStatus implements app.GatewayQueries.
func (c *Client) SubscriptionStatus(ctx context.Context, addr common.Address) (*domain.SubscriptionStatus, error) {
	var out subscriptionWire
	if err := c.do(ctx, "subscription", http.MethodGet, subscriptionPath+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}

	tier, ok := domain.ParseTier(out.Tier)
	if !ok {
		tier = domain.TierFree
	}

	return &domain.SubscriptionStatus{
		Tier:      tier,
		ExpiresAt: unixTime(out.ExpiresAt),
		AutoRenew: out.AutoRenew,
	}, nil
}

// LiquidityPositions implements app.GatewayQueries.
func (c *Client) LiquidityPositions(ctx context.Context, addr common.Address) ([]domain.LiquidityPosition, error) {
	var out []domain.LiquidityPosition
	if err := c.do(ctx, "liquidity", http.MethodGet, liquidityPath+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StakingInfo implements app.GatewayQueries.
func (c *Client) StakingInfo(ctx context.Context, addr common.Address) (*domain.StakingInfo, error) {
	var out domain.StakingInfo
	if err := c.do(ctx, "staking", http.MethodGet, stakingPath+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReferralLink implements app.GatewayQueries.
func (c *Client) ReferralLink(ctx context.Context, addr common.Address) (string, error) {
	var out struct {
		ReferralLink string `json:"referralLink"`
	}
	body := map[string]string{"address": addr.Hex()}
	if err := c.do(ctx, "referral", http.MethodPost, referralPath, body, &out); err != nil {
		return "", err
	}
	return out.ReferralLink, nil
}

// unixTime accepts seconds or milliseconds.
func unixTime(v int64) time.Time {
	switch {
	case v <= 0:
		return time.Time{}
	case v >= 1e12:
		return time.UnixMilli(v).UTC()
	default:
		return time.Unix(v, 0).UTC()
	}
}
