package cex

import (
	"context"
	"fmt"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const bybitTickersPath = "/v5/market/tickers"

var _ app.VenueProvider = (*Bybit)(nil)

type bybitResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []struct {
			Symbol    string `json:"symbol"`
			LastPrice string `json:"lastPrice"`
			Bid1Price string `json:"bid1Price"`
			Ask1Price string `json:"ask1Price"`
		} `json:"list"`
	} `json:"result"`
	Time int64 `json:"time"`
}

// Bybit quotes the Bybit spot market.
type Bybit struct {
	rest *restClient
}

// NewBybit creates the Bybit provider.
func NewBybit(cfg Config, log logger.LoggerInterface) (*Bybit, error) {
	rest, err := newRESTClient("bybit", cfg, log)
	if err != nil {
		return nil, err
	}
	return &Bybit{rest: rest}, nil
}

func (b *Bybit) Name() string                 { return "bybit" }
func (b *Bybit) Kind() marketDomain.VenueKind { return marketDomain.VenueCEX }

// Quote implements app.VenueProvider.
func (b *Bybit) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	pair, err := CompactSymbol(symbol)
	if err != nil {
		return marketDomain.VenueQuote{}, err
	}

	var out bybitResponse
	params := map[string]string{"category": "spot", "symbol": pair}
	if err := b.rest.get(ctx, "tickers", bybitTickersPath, params, &out, statusErrorHandler(jsonField("retMsg"))); err != nil {
		return marketDomain.VenueQuote{}, err
	}

	if out.RetCode != 0 {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeVenueRequestFailed,
			apperror.WithContext(fmt.Sprintf("bybit %d: %s", out.RetCode, out.RetMsg)))
	}
	if len(out.Result.List) == 0 {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeUnknownSymbol,
			apperror.WithContext("bybit "+pair))
	}

	t := out.Result.List[0]
	return marketDomain.VenueQuote{
		Last:      marketDomain.ParsePrice(t.LastPrice),
		Bid:       marketDomain.ParsePrice(t.Bid1Price),
		Ask:       marketDomain.ParsePrice(t.Ask1Price),
		Timestamp: out.Time,
	}, nil
}
