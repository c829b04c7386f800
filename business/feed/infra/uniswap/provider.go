// Package uniswap quotes on-chain Uniswap V3 prices through the QuoterV2
// contract.
package uniswap

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	"github.com/fd1az/trader-sentinel/business/feed/infra/cex"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/asset"
	"github.com/fd1az/trader-sentinel/internal/circuitbreaker"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "uniswap"
	meterName  = "uniswap"

	// Name is the venue name reported in quotes.
	Name = "uniswap"

	dexID = "uniswap-v3"
)

var _ app.VenueProvider = (*Provider)(nil)

// Wrapped tokens quoted in place of the native asset.
var wrapped = map[string]string{
	"BTC": "WBTC",
	"ETH": "WETH",
}

// Config holds provider settings.
type Config struct {
	Quoter   common.Address
	ChainID  uint64
	FeeTiers []int
}

type providerMetrics struct {
	quotesTotal  metric.Int64Counter
	quoteLatency metric.Float64Histogram
	quoteErrors  metric.Int64Counter
}

// Provider quotes one BASE unit in QUOTE across the configured fee tiers and
// reports the best output as the last price.
type Provider struct {
	caller   ethereum.ContractCaller
	quoter   common.Address
	abi      abi.ABI
	chainID  uint64
	feeTiers []int

	registry *asset.Registry
	logger   logger.LoggerInterface
	cb       *circuitbreaker.CircuitBreaker[quoteResult]

	tracer  trace.Tracer
	metrics *providerMetrics
}

// NewProvider creates a Provider. caller is usually an *ethclient.Client.
func NewProvider(caller ethereum.ContractCaller, registry *asset.Registry, cfg Config, log logger.LoggerInterface) (*Provider, error) {
	parsed, err := abi.JSON(strings.NewReader(quoterV2ABI))
	if err != nil {
		return nil, fmt.Errorf("parse quoter abi: %w", err)
	}

	quoter := cfg.Quoter
	if quoter == (common.Address{}) {
		quoter = MainnetQuoterV2
	}
	chainID := cfg.ChainID
	if chainID == 0 {
		chainID = asset.ChainIDEthereum
	}
	feeTiers := cfg.FeeTiers
	if len(feeTiers) == 0 {
		feeTiers = []int{FeeTier005, FeeTier030, FeeTier100, FeeTier001}
	}

	p := &Provider{
		caller:   caller,
		quoter:   quoter,
		abi:      parsed,
		chainID:  chainID,
		feeTiers: feeTiers,
		registry: registry,
		logger:   log,
		cb:       circuitbreaker.New[quoteResult](circuitbreaker.DefaultConfig("uniswap-quoter")),
		tracer:   otel.Tracer(tracerName),
	}

	if err := p.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return p, nil
}

func (p *Provider) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	p.metrics = &providerMetrics{}

	p.metrics.quotesTotal, err = meter.Int64Counter(
		"uniswap_quotes_total",
		metric.WithDescription("Total quote requests"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteLatency, err = meter.Float64Histogram(
		"uniswap_quote_latency_ms",
		metric.WithDescription("Quote request latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	p.metrics.quoteErrors, err = meter.Int64Counter(
		"uniswap_quote_errors_total",
		metric.WithDescription("Total quote errors"),
	)
	return err
}

// Name implements app.VenueProvider.
func (p *Provider) Name() string {
	return Name
}

// Kind implements app.VenueProvider.
func (p *Provider) Kind() marketDomain.VenueKind {
	return marketDomain.VenueDEX
}

// Quote implements app.VenueProvider.
func (p *Provider) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	ctx, span := p.tracer.Start(ctx, "uniswap.quote",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	start := time.Now()
	p.metrics.quotesTotal.Add(ctx, 1)
	defer func() {
		p.metrics.quoteLatency.Record(ctx, float64(time.Since(start).Milliseconds()))
	}()

	base, quote, err := p.tokens(symbol)
	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "unknown symbol")
		return marketDomain.VenueQuote{}, err
	}

	amountIn := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(base.Decimals)), nil)

	// A pair with no pool on any tier counts as one breaker failure
	best, err := p.cb.Execute(func() (quoteResult, error) {
		return p.bestQuote(ctx, span, base, quote, amountIn)
	})
	if err != nil {
		p.metrics.quoteErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, "no quote")
		return marketDomain.VenueQuote{}, apperror.Wrap(err, apperror.CodeContractCallFailed,
			base.Symbol+"/"+quote.Symbol)
	}

	price := asset.FromBaseUnits(best.AmountOut, quote.Decimals)

	span.SetAttributes(
		attribute.String("amount_out", best.AmountOut.String()),
		attribute.Int("fee_tier", best.Fee),
		attribute.Int64("gas_estimate", best.GasEstimate.Int64()),
	)
	span.SetStatus(codes.Ok, "quote received")

	p.logger.Debug(ctx, "uniswap quote",
		"symbol", symbol,
		"price", price.String(),
		"fee_tier", best.Fee)

	return marketDomain.VenueQuote{
		Last:  marketDomain.Price(price),
		Pair:  fmt.Sprintf("%s/%s-%d", base.Symbol, quote.Symbol, best.Fee),
		Chain: p.chainName(),
		Dex:   dexID,
	}, nil
}

// bestQuote returns the highest output across fee tiers.
func (p *Provider) bestQuote(ctx context.Context, span trace.Span, base, quote asset.Token, amountIn *big.Int) (quoteResult, error) {
	var best *quoteResult
	for _, fee := range p.feeTiers {
		res, err := p.quoteFeeTier(ctx, base.Address, quote.Address, amountIn, fee)
		if err != nil {
			span.AddEvent("fee_tier_failed", trace.WithAttributes(
				attribute.Int("fee_tier", fee),
				attribute.String("error", err.Error()),
			))
			continue
		}
		if best == nil || res.AmountOut.Cmp(best.AmountOut) > 0 {
			best = res
		}
	}

	if best == nil {
		return quoteResult{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithMessage("no pool found for token pair"))
	}
	return *best, nil
}

func (p *Provider) quoteFeeTier(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *big.Int, fee int) (*quoteResult, error) {
	data, err := p.abi.Pack(quoteMethod, quoteParams{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		Fee:               big.NewInt(int64(fee)),
		SqrtPriceLimitX96: big.NewInt(0),
	})
	if err != nil {
		return nil, fmt.Errorf("encode call: %w", err)
	}

	out, err := p.caller.CallContract(ctx, ethereum.CallMsg{To: &p.quoter, Data: data}, nil)
	if err != nil {
		return nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("fee tier %d", fee)))
	}

	values, err := p.abi.Unpack(quoteMethod, out)
	if err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	if len(values) < 4 {
		return nil, fmt.Errorf("unexpected output length: %d", len(values))
	}

	amountOut, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amountOut type %T", values[0])
	}
	gas, ok := values[3].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected gasEstimate type %T", values[3])
	}
	return &quoteResult{AmountOut: amountOut, GasEstimate: gas, Fee: fee}, nil
}

// tokens resolves BASE/QUOTE to deployed tokens on the provider's chain.
func (p *Provider) tokens(symbol string) (asset.Token, asset.Token, error) {
	baseSym, quoteSym, err := cex.SplitSymbol(symbol)
	if err != nil {
		return asset.Token{}, asset.Token{}, err
	}

	base, err := p.token(baseSym)
	if err != nil {
		return asset.Token{}, asset.Token{}, err
	}
	quote, err := p.token(quoteSym)
	if err != nil {
		return asset.Token{}, asset.Token{}, err
	}
	return base, quote, nil
}

func (p *Provider) token(symbol string) (asset.Token, error) {
	if w, ok := wrapped[symbol]; ok {
		symbol = w
	}
	t, ok := p.registry.Token(p.chainID, symbol)
	if !ok || !t.IsDeployed() {
		return asset.Token{}, apperror.New(apperror.CodeUnknownSymbol,
			apperror.WithContext(fmt.Sprintf("%s on chain %d", symbol, p.chainID)))
	}
	return t, nil
}

func (p *Provider) chainName() string {
	if c, ok := p.registry.ChainByID(p.chainID); ok {
		return string(c.Key)
	}
	return fmt.Sprintf("%d", p.chainID)
}
