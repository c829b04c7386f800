package binance

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	"github.com/fd1az/trader-sentinel/business/feed/infra/cex"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

// Name is the venue name reported in quotes.
const Name = "binance"

var _ app.VenueProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the Binance provider.
type ProviderConfig struct {
	WebSocketURL string
	RESTURL      string
	// Symbols are BASE/QUOTE symbols subscribed at connect time.
	Symbols        []string
	StaleTimeout   time.Duration
	RequestTimeout time.Duration
	// EnableStream turns the websocket on; REST alone serves otherwise.
	EnableStream bool
}

type book struct {
	bid, ask   string
	lastUpdate time.Time
}

// Provider serves fresh bookTicker data and falls back to REST.
type Provider struct {
	config ProviderConfig
	logger logger.LoggerInterface
	stream *Stream
	rest   *cex.Ticker24h

	books   map[string]book
	booksMu sync.RWMutex

	now func() time.Time
}

// NewProvider creates a Provider.
func NewProvider(cfg ProviderConfig, log logger.LoggerInterface) (*Provider, error) {
	if cfg.StaleTimeout <= 0 {
		cfg.StaleTimeout = 5 * time.Second
	}

	rest, err := cex.NewTicker24h(Name, cex.Config{
		BaseURL: restURL(cfg.RESTURL),
		Timeout: cfg.RequestTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config: cfg,
		logger: log,
		rest:   rest,
		books:  make(map[string]book),
		now:    time.Now,
	}

	if cfg.EnableStream {
		symbols := make([]string, 0, len(cfg.Symbols))
		for _, sym := range cfg.Symbols {
			compact, err := cex.CompactSymbol(sym)
			if err != nil {
				log.Warn(context.Background(), "skipping binance symbol", "symbol", sym, "error", err)
				continue
			}
			symbols = append(symbols, compact)
		}

		stream, err := NewStream(StreamConfig{BaseURL: cfg.WebSocketURL, Symbols: symbols}, log)
		if err != nil {
			return nil, err
		}
		stream.OnBookTicker(p.handleBookTicker)
		p.stream = stream
	}

	return p, nil
}

func restURL(u string) string {
	if u == "" {
		return "https://api.binance.com"
	}
	return u
}

func (p *Provider) Name() string                 { return Name }
func (p *Provider) Kind() marketDomain.VenueKind { return marketDomain.VenueCEX }

// Connect opens the websocket. It retries until ctx ends, so callers run it
// in the background; REST serves quotes meanwhile.
func (p *Provider) Connect(ctx context.Context) error {
	if p.stream == nil || len(p.stream.config.Symbols) == 0 {
		return nil
	}
	return p.stream.Connect(ctx)
}

// Close closes the websocket.
func (p *Provider) Close() error {
	if p.stream == nil {
		return nil
	}
	return p.stream.Close()
}

func (p *Provider) handleBookTicker(ev *BookTickerEvent) {
	p.booksMu.Lock()
	p.books[strings.ToUpper(ev.Symbol)] = book{
		bid:        ev.BidPrice,
		ask:        ev.AskPrice,
		lastUpdate: p.now(),
	}
	p.booksMu.Unlock()
}

func (p *Provider) fresh(symbol string) (book, bool) {
	p.booksMu.RLock()
	b, ok := p.books[symbol]
	p.booksMu.RUnlock()

	if !ok || p.now().Sub(b.lastUpdate) > p.config.StaleTimeout {
		return book{}, false
	}
	return b, true
}

// Quote implements app.VenueProvider.
func (p *Provider) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	compact, err := cex.CompactSymbol(symbol)
	if err != nil {
		return marketDomain.VenueQuote{}, err
	}

	span := trace.SpanFromContext(ctx)

	if b, ok := p.fresh(compact); ok {
		span.SetAttributes(attribute.String("binance.source", "websocket"))
		return marketDomain.VenueQuote{
			Bid:       marketDomain.ParsePrice(b.bid),
			Ask:       marketDomain.ParsePrice(b.ask),
			Timestamp: b.lastUpdate.UnixMilli(),
		}, nil
	}

	p.ensureSubscribed(ctx, compact)

	span.SetAttributes(attribute.String("binance.source", "http_fallback"))
	q, err := p.rest.Quote(ctx, symbol)
	if err != nil {
		return marketDomain.VenueQuote{}, apperror.Wrap(err, apperror.CodeVenueRequestFailed, "binance rest fallback")
	}
	return q, nil
}

// ensureSubscribed adds a bookTicker subscription for symbols first seen
// after connect.
func (p *Provider) ensureSubscribed(ctx context.Context, compact string) {
	if p.stream == nil || !p.stream.IsConnected() {
		return
	}
	stream := BookTickerStream(compact)
	if p.stream.Subscribed(stream) {
		return
	}
	if err := p.stream.Subscribe(ctx, stream); err != nil {
		p.logger.Warn(ctx, "binance subscribe failed", "stream", stream, "error", err)
	}
}
