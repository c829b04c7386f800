package cex

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fd1az/trader-sentinel/business/feed/app"
	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/internal/apperror"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

const okxTickerPath = "/api/v5/market/ticker"

var _ app.VenueProvider = (*OKX)(nil)

type okxResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		InstID string `json:"instId"`
		Last   string `json:"last"`
		BidPx  string `json:"bidPx"`
		AskPx  string `json:"askPx"`
		TS     string `json:"ts"`
	} `json:"data"`
}

// OKX quotes the OKX spot market.
type OKX struct {
	rest *restClient
}

// NewOKX creates the OKX provider.
func NewOKX(cfg Config, log logger.LoggerInterface) (*OKX, error) {
	rest, err := newRESTClient("okx", cfg, log)
	if err != nil {
		return nil, err
	}
	return &OKX{rest: rest}, nil
}

func (o *OKX) Name() string                 { return "okx" }
func (o *OKX) Kind() marketDomain.VenueKind { return marketDomain.VenueCEX }

// Quote implements app.VenueProvider.
func (o *OKX) Quote(ctx context.Context, symbol string) (marketDomain.VenueQuote, error) {
	base, quote, err := SplitSymbol(symbol)
	if err != nil {
		return marketDomain.VenueQuote{}, err
	}
	instID := base + "-" + quote

	var out okxResponse
	if err := o.rest.get(ctx, "ticker", okxTickerPath,
		map[string]string{"instId": instID}, &out, statusErrorHandler(jsonField("msg"))); err != nil {
		return marketDomain.VenueQuote{}, err
	}

	if out.Code != "0" {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeVenueRequestFailed,
			apperror.WithContext(fmt.Sprintf("okx %s: %s", out.Code, out.Msg)))
	}
	if len(out.Data) == 0 {
		return marketDomain.VenueQuote{}, apperror.New(apperror.CodeUnknownSymbol,
			apperror.WithContext("okx "+instID))
	}

	t := out.Data[0]
	ts, _ := strconv.ParseInt(t.TS, 10, 64)
	return marketDomain.VenueQuote{
		Last:      marketDomain.ParsePrice(t.Last),
		Bid:       marketDomain.ParsePrice(t.BidPx),
		Ask:       marketDomain.ParsePrice(t.AskPx),
		Timestamp: ts,
	}, nil
}
