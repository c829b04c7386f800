package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/cache"
	"github.com/fd1az/trader-sentinel/internal/logger"
	"github.com/fd1az/trader-sentinel/internal/ratelimit"
)

const (
	tracerName = "feed"
	meterName  = "feed"

	DefaultVenueMinInterval   = 600 * time.Millisecond
	DefaultVenueTimeout       = 5 * time.Second
	DefaultSnapshotTTL        = 250 * time.Millisecond
	DefaultAlertSpreadPercent = "0.5"
)

// ServiceConfig holds the aggregation settings.
type ServiceConfig struct {
	// VenueMinInterval spaces consecutive requests to the same venue.
	VenueMinInterval time.Duration
	VenueTimeout     time.Duration
	// SnapshotTTL caches snapshots per symbol; zero disables caching.
	SnapshotTTL time.Duration
	// AlertSpreadPercent defaults to DefaultAlertSpreadPercent when nil.
	AlertSpreadPercent *decimal.Decimal
}

func (c *ServiceConfig) applyDefaults() {
	if c.VenueMinInterval < 0 {
		c.VenueMinInterval = 0
	}
	if c.VenueTimeout <= 0 {
		c.VenueTimeout = DefaultVenueTimeout
	}
	if c.SnapshotTTL < 0 {
		c.SnapshotTTL = 0
	}
	if c.AlertSpreadPercent == nil {
		threshold := decimal.RequireFromString(DefaultAlertSpreadPercent)
		c.AlertSpreadPercent = &threshold
	}
}

type serviceMetrics struct {
	snapshots   metric.Int64Counter
	venueErrors metric.Int64Counter
	alerts      metric.Int64Counter
}

// Service aggregates venue quotes into snapshots and arbitrage views.
type Service struct {
	providers []VenueProvider
	config    ServiceConfig
	logger    logger.LoggerInterface

	limiter *ratelimit.Group
	cache   *cache.Cache[string, marketDomain.MarketSnapshot]
	group   singleflight.Group
	now     func() time.Time

	tracer  trace.Tracer
	metrics *serviceMetrics

	mu     sync.Mutex
	alerts marketDomain.SignalHistory
}

// NewService creates a Service over providers, queried in the given order.
func NewService(providers []VenueProvider, cfg ServiceConfig, log logger.LoggerInterface) (*Service, error) {
	cfg.applyDefaults()

	s := &Service{
		providers: providers,
		config:    cfg,
		logger:    log,
		limiter:   ratelimit.NewGroup(cfg.VenueMinInterval),
		cache:     cache.New[string, marketDomain.MarketSnapshot](),
		now:       time.Now,
		tracer:    otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return s, nil
}

func (s *Service) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.snapshots, err = meter.Int64Counter(
		"feed_snapshots_total",
		metric.WithDescription("Snapshots assembled from venues"),
	)
	if err != nil {
		return err
	}

	s.metrics.venueErrors, err = meter.Int64Counter(
		"feed_venue_errors_total",
		metric.WithDescription("Failed venue quotes"),
	)
	if err != nil {
		return err
	}

	s.metrics.alerts, err = meter.Int64Counter(
		"feed_alerts_total",
		metric.WithDescription("Spreads above the alert threshold"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Venues returns the provider names in query order.
func (s *Service) Venues() []string {
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}
	return names
}

// NormalizeSymbol upper-cases and trims a BASE/QUOTE symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Snapshot queries every venue for symbol. A venue that errors contributes
// a quote carrying the error instead of failing the snapshot.
func (s *Service) Snapshot(ctx context.Context, symbol string) (marketDomain.MarketSnapshot, error) {
	symbol = NormalizeSymbol(symbol)
	if symbol == "" {
		return marketDomain.MarketSnapshot{}, apperror.New(apperror.CodeRequiredField,
			apperror.WithMessage("symbol is required"))
	}

	if snap, ok := s.cache.Get(ctx, symbol); ok {
		return snap, nil
	}

	// The flight is shared by every concurrent caller, so it must not end
	// with the first caller's context.
	ch := s.group.DoChan(symbol, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.VenueTimeout)
		defer cancel()

		snap := s.collect(ctx, symbol)
		if s.config.SnapshotTTL > 0 {
			s.cache.Set(ctx, symbol, snap, s.config.SnapshotTTL)
		}
		return snap, nil
	})

	select {
	case <-ctx.Done():
		return marketDomain.MarketSnapshot{}, apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(ctx.Err()),
			apperror.WithContext(symbol))
	case res := <-ch:
		if res.Err != nil {
			return marketDomain.MarketSnapshot{}, res.Err
		}
		return res.Val.(marketDomain.MarketSnapshot), nil
	}
}

func (s *Service) collect(ctx context.Context, symbol string) marketDomain.MarketSnapshot {
	ctx, span := s.tracer.Start(ctx, "feed.snapshot",
		trace.WithAttributes(
			attribute.String("symbol", symbol),
			attribute.Int("venues", len(s.providers)),
		),
	)
	defer span.End()

	quotes := make([]marketDomain.VenueQuote, len(s.providers))

	var g errgroup.Group
	for i, p := range s.providers {
		g.Go(func() error {
			quotes[i] = s.quote(ctx, p, symbol)
			return nil
		})
	}
	_ = g.Wait()

	s.metrics.snapshots.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", symbol)))

	return marketDomain.MarketSnapshot{
		Symbol:    symbol,
		Timestamp: s.now().UnixMilli(),
		Venues:    quotes,
	}
}

func (s *Service) quote(ctx context.Context, p VenueProvider, symbol string) marketDomain.VenueQuote {
	ctx, cancel := context.WithTimeout(ctx, s.config.VenueTimeout)
	defer cancel()

	q, err := s.fetch(ctx, p, symbol)
	if err != nil {
		s.metrics.venueErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("venue", p.Name())))
		s.logger.Debug(ctx, "venue quote failed", "venue", p.Name(), "symbol", symbol, "error", err)
		return marketDomain.FailedQuote(p.Name(), p.Kind(), s.now().UnixMilli(), err)
	}

	q.Venue = p.Name()
	q.Kind = p.Kind()
	if q.Timestamp == 0 {
		q.Timestamp = s.now().UnixMilli()
	}
	return q
}

func (s *Service) fetch(ctx context.Context, p VenueProvider, symbol string) (marketDomain.VenueQuote, error) {
	if err := s.limiter.Wait(ctx, p.Name()); err != nil {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithCause(err),
			apperror.WithContext(p.Name()))
	}
	return p.Quote(ctx, symbol)
}

// Arbitrage computes the best bid and ask over centralized venues and
// annotates the view with the first DEX price.
func (s *Service) Arbitrage(ctx context.Context, symbol string) (marketDomain.ArbitrageView, error) {
	snap, err := s.Snapshot(ctx, symbol)
	if err != nil {
		return marketDomain.ArbitrageView{}, err
	}

	view := marketDomain.ComputeArbitrageView(snap.CEXOnly())
	if dex, ok := snap.FirstDEX(); ok {
		view = view.WithDex(dex.Last.Decimal)
	}
	view.Timestamp = s.now().UnixMilli()

	if sig, ok := marketDomain.DetectSignal(view, *s.config.AlertSpreadPercent); ok {
		s.recordAlert(ctx, sig)
	}

	return view, nil
}

func (s *Service) recordAlert(ctx context.Context, sig marketDomain.Signal) {
	s.mu.Lock()
	s.alerts.Add(sig)
	s.mu.Unlock()

	s.metrics.alerts.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", sig.Symbol)))
	s.logger.Info(ctx, "spread alert", "symbol", sig.Symbol, "message", sig.Message, "profit", sig.Profit.Decimal.StringFixed(4))
}

// Alerts returns the retained spread alerts, most recent first.
func (s *Service) Alerts() []marketDomain.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alerts.List()
}

// Close stops the snapshot cache janitor.
func (s *Service) Close() error {
	s.cache.Close()
	return nil
}
