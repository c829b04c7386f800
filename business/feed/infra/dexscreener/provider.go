// Package dexscreener quotes DEX prices through the DexScreener search API.
package dexscreener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/httpclient"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "dexscreener"

	// Name is the venue name reported in quotes.
	Name = "dexscreener"

	BaseURL        = "https://api.dexscreener.com"
	searchPath     = "/latest/dex/search"
	defaultTimeout = 10 * time.Second
)

var _ app.VenueProvider = (*Provider)(nil)

// Config holds provider settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type pair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	URL         string `json:"url"`
	PairAddress string `json:"pairAddress"`
	PriceUSD    string `json:"priceUsd"`
	Liquidity   *struct {
		USD decimal.NullDecimal `json:"usd"`
	} `json:"liquidity"`
}

func (p pair) liquidityUSD() decimal.NullDecimal {
	if p.Liquidity == nil {
		return decimal.NullDecimal{}
	}
	return p.Liquidity.USD
}

type searchResponse struct {
	Pairs []pair `json:"pairs"`
}

// Provider picks the most liquid pair matching a symbol.
type Provider struct {
	client httpclient.Client
	cb     *circuitbreaker.CircuitBreaker[*httpclient.Response]
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewProvider creates a Provider.
func NewProvider(cfg Config, log logger.LoggerInterface) (*Provider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(Name),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTracer(tracer),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig(Name)
	cbCfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name, "from", from.String(), "to", to.String())
	}

	return &Provider{
		client: client,
		cb:     circuitbreaker.New[*httpclient.Response](cbCfg),
		logger: log,
		tracer: tracer,
	}, nil
}

func (p *Provider) Name() string                 { return Name }
func (p *Provider) Kind() marketDomain.VenueKind { return marketDomain.VenueDEX }

// Query maps BTC/USDT to the search text "BTC USDT".
func Query(symbol string) string {
	return strings.TrimSpace(strings.ReplaceAll(symbol, "/", " "))
}

func errorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	return fmt.Errorf("HTTP %d: %s", statusCode, string(body))
}

// Quote implements app.VenueProvider. No matching pair is not an error: the
// quote simply carries no price.
func (p *Provider) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	q := Query(symbol)

	ctx, span := p.tracer.Start(ctx, "dexscreener.search",
		trace.WithAttributes(attribute.String("query", q)),
	)
	defer span.End()

	var out searchResponse
	resp, err := p.cb.Execute(func() (*httpclient.Response, error) {
		return p.client.NewRequestWithOptions(
			httpclient.WithAttributes(attribute.String("endpoint", "search")),
			httpclient.WithErrorHandler(errorHandler),
		).
			SetQueryParam("q", q).
			SetResult(&out).
			Get(ctx, searchPath)
	})
	if err != nil {
		span.RecordError(err)
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeVenueRequestFailed,
			apperror.WithCause(err),
			apperror.WithContext("dexscreener search "+q))
	}
	if resp.Result() == nil {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeMalformedResponse,
			apperror.WithContext("dexscreener search: "+string(resp.Body())))
	}

	best, ok := mostLiquid(out.Pairs)
	span.SetAttributes(attribute.Int("pairs", len(out.Pairs)))
	if !ok {
		return marketDomain.VenueQuote{}, nil
	}

	pairID := best.PairAddress
	if pairID == "" {
		pairID = best.URL
	}

	return marketDomain.VenueQuote{
		Last:         marketDomain.ParsePrice(best.PriceUSD),
		Pair:         pairID,
		Chain:        best.ChainID,
		Dex:          best.DexID,
		LiquidityUSD: best.liquidityUSD(),
	}, nil
}

// mostLiquid returns the pair with the highest USD liquidity, missing
// liquidity counting as zero. Ties keep the earlier pair.
func mostLiquid(pairs []pair) (pair, bool) {
	if len(pairs) == 0 {
		return pair{}, false
	}

	best := pairs[0]
	bestLiq := best.liquidityUSD().Decimal
	for _, p := range pairs[1:] {
		if liq := p.liquidityUSD().Decimal; liq.GreaterThan(bestLiq) {
			best, bestLiq = p, liq
		}
	}
	return best, true
}
