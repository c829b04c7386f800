package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const (
	tracerName = "market"
	meterName  = "market"

	// SourceName labels the market data source in connection status updates.
	SourceName = "Market API"

	DefaultPollInterval     = 5 * time.Second
	DefaultRequestTimeout   = 10 * time.Second
	DefaultStreamInterval   = time.Second
	DefaultMinSpreadPercent = "0.1"
)

// WatcherConfig holds configuration for the signal watcher.
type WatcherConfig struct {
	// Symbols is used when the store watchlist is empty.
	Symbols        []string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	// MinSpreadPercent defaults to DefaultMinSpreadPercent when nil. Zero
	// reports every positive spread.
	MinSpreadPercent *decimal.Decimal
	// UseStream switches from polling to the push stream when the source
	// supports it.
	UseStream      bool
	StreamInterval time.Duration
}

func (c *WatcherConfig) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.StreamInterval <= 0 {
		c.StreamInterval = DefaultStreamInterval
	}
	if c.MinSpreadPercent == nil {
		threshold := decimal.RequireFromString(DefaultMinSpreadPercent)
		c.MinSpreadPercent = &threshold
	}
}

type watcherMetrics struct {
	polls   metric.Int64Counter
	signals metric.Int64Counter
	errors  metric.Int64Counter
}

// Watcher turns market snapshots into views and signals for every symbol
// on the watchlist.
type Watcher struct {
	source   MarketDataSource
	store    MarketStore
	reporter Reporter
	config   WatcherConfig
	logger   logger.LoggerInterface

	tracer  trace.Tracer
	metrics *watcherMetrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	healthy bool
}

// NewWatcher creates a new Watcher.
func NewWatcher(
	source MarketDataSource,
	store MarketStore,
	reporter Reporter,
	config WatcherConfig,
	log logger.LoggerInterface,
) (*Watcher, error) {
	config.applyDefaults()

	w := &Watcher{
		source:   source,
		store:    store,
		reporter: reporter,
		config:   config,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	if err := w.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return w, nil
}

func (w *Watcher) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	w.metrics = &watcherMetrics{}

	w.metrics.polls, err = meter.Int64Counter(
		"market_polls_total",
		metric.WithDescription("Snapshot fetches by symbol"),
	)
	if err != nil {
		return err
	}

	w.metrics.signals, err = meter.Int64Counter(
		"market_signals_total",
		metric.WithDescription("Signals emitted by symbol"),
	)
	if err != nil {
		return err
	}

	w.metrics.errors, err = meter.Int64Counter(
		"market_poll_errors_total",
		metric.WithDescription("Failed snapshot fetches by symbol"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start begins watching in the background.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.logger.Info(ctx, "starting market watcher",
		"symbols", w.symbols(),
		"interval", w.config.PollInterval,
		"min_spread_percent", w.config.MinSpreadPercent.String(),
		"stream", w.config.UseStream)

	if err := w.reporter.Start(ctx); err != nil {
		cancel()
		return err
	}

	streamer, canStream := w.source.(SnapshotStreamer)
	go func() {
		defer close(w.done)
		if w.config.UseStream && canStream {
			w.stream(ctx, streamer)
			return
		}
		w.poll(ctx)
	}()

	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	w.logger.Info(context.Background(), "stopping market watcher")
	return w.reporter.Stop()
}

func (w *Watcher) poll(ctx context.Context) {
	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "watcher stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			w.PollOnce(ctx)
		}
	}
}

// PollOnce fetches every watched symbol concurrently and processes the
// snapshots. A failing symbol never affects the others.
func (w *Watcher) PollOnce(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "market.PollOnce")
	defer span.End()

	symbols := w.symbols()
	span.SetAttributes(attribute.Int("symbols", len(symbols)))

	start := time.Now()
	var (
		mu       sync.Mutex
		failures int
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		g.Go(func() error {
			if err := w.pollSymbol(gctx, symbol); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	w.setHealthy(len(symbols) == 0 || failures < len(symbols), time.Since(start))
}

func (w *Watcher) pollSymbol(ctx context.Context, symbol string) error {
	attrs := metric.WithAttributes(attribute.String("symbol", symbol))
	w.metrics.polls.Add(ctx, 1, attrs)

	ctx, cancel := context.WithTimeout(ctx, w.config.RequestTimeout)
	defer cancel()

	snapshot, err := w.source.Snapshot(ctx, symbol)
	if err != nil {
		w.metrics.errors.Add(ctx, 1, attrs)
		w.logger.Warn(ctx, "snapshot fetch failed", "symbol", symbol, "error", err)
		return err
	}

	w.Process(ctx, snapshot)
	return nil
}

func (w *Watcher) stream(ctx context.Context, streamer SnapshotStreamer) {
	g, gctx := errgroup.WithContext(ctx)
	for _, symbol := range w.symbols() {
		g.Go(func() error {
			w.streamSymbol(gctx, streamer, symbol)
			return nil
		})
	}
	_ = g.Wait()
	w.logger.Info(ctx, "watcher stopping", "reason", ctx.Err())
}

// streamSymbol consumes one symbol's stream and reopens it after a poll
// interval when it ends.
func (w *Watcher) streamSymbol(ctx context.Context, streamer SnapshotStreamer, symbol string) {
	for {
		snapshots, err := streamer.Stream(ctx, symbol, w.config.StreamInterval)
		if err != nil {
			w.logger.Warn(ctx, "stream open failed", "symbol", symbol, "error", err)
			w.setHealthy(false, 0)
		} else {
			w.setHealthy(true, 0)
			for snapshot := range snapshots {
				w.Process(ctx, snapshot)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.config.PollInterval):
		}
	}
}

// Process derives the view from snapshot, stores it, and emits a signal
// when the spread reaches the configured threshold.
func (w *Watcher) Process(ctx context.Context, snapshot domain.MarketSnapshot) (domain.Signal, bool) {
	view := domain.ComputeArbitrageView(snapshot)
	w.store.SetMarketData(snapshot.Symbol, view)
	w.reporter.UpdateView(snapshot, view)

	sig, ok := domain.DetectSignal(view, *w.config.MinSpreadPercent)
	if !ok {
		return domain.Signal{}, false
	}

	w.store.AddSignal(sig)
	w.reporter.Report(sig)
	w.metrics.signals.Add(ctx, 1, metric.WithAttributes(attribute.String("symbol", sig.Symbol)))
	w.logger.Debug(ctx, "signal detected",
		"id", sig.ID,
		"symbol", sig.Symbol,
		"profit", sig.Profit.Decimal.StringFixed(4))

	return sig, true
}

func (w *Watcher) symbols() []string {
	if list := w.store.Watchlist(); len(list) > 0 {
		return list
	}
	return w.config.Symbols
}

func (w *Watcher) setHealthy(ok bool, latency time.Duration) {
	w.mu.Lock()
	changed := w.healthy != ok
	w.healthy = ok
	w.mu.Unlock()

	if changed || ok {
		w.reporter.UpdateConnectionStatus(SourceName, ok, latency)
	}
}
