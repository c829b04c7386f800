package cex

import (
	"context"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const ticker24hPath = "/api/v3/ticker/24hr"

var _ app.VenueProvider = (*Ticker24h)(nil)

// ticker24hResponse is the Binance-compatible 24h ticker, also served by MEXC.
type ticker24hResponse struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	BidPrice  string `json:"bidPrice"`
	AskPrice  string `json:"askPrice"`
	CloseTime int64  `json:"closeTime"`
}

// Ticker24h quotes a venue exposing the Binance-compatible
// /api/v3/ticker/24hr endpoint.
type Ticker24h struct {
	name string
	rest *restClient
}

// NewTicker24h creates a provider named name.
func NewTicker24h(name string, cfg Config, log logger.LoggerInterface) (*Ticker24h, error) {
	rest, err := newRESTClient(name, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Ticker24h{name: name, rest: rest}, nil
}

// NewMEXC creates the MEXC provider.
func NewMEXC(cfg Config, log logger.LoggerInterface) (*Ticker24h, error) {
	return NewTicker24h("mexc", cfg, log)
}

func (t *Ticker24h) Name() string                 { return t.name }
func (t *Ticker24h) Kind() marketDomain.VenueKind { return marketDomain.VenueCEX }

// Quote implements app.VenueProvider.
func (t *Ticker24h) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	pair, err := CompactSymbol(symbol)
	if err != nil {
		return marketDomain.VenueQuote{}, err
	}

	var out ticker24hResponse
	if err := t.rest.get(ctx, "ticker24h", ticker24hPath,
		map[string]string{"symbol": pair}, &out, statusErrorHandler(jsonField("msg"))); err != nil {
		return marketDomain.VenueQuote{}, err
	}

	return marketDomain.VenueQuote{
		Last:      marketDomain.ParsePrice(out.LastPrice),
		Bid:       marketDomain.ParsePrice(out.BidPrice),
		Ask:       marketDomain.ParsePrice(out.AskPrice),
		Timestamp: out.CloseTime,
	}, nil
}
