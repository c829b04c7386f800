package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ArbitrageView is the best bid/ask summary derived from a snapshot. A side
// with no data has price zero and an empty venue.
type ArbitrageView struct {
	Symbol       string          `json:"symbol"`
	BestBid      decimal.Decimal `json:"best_bid"`
	BestBidVenue string          `json:"best_bid_venue"`
	BestAsk      decimal.Decimal `json:"best_ask"`
	BestAskVenue string          `json:"best_ask_venue"`
	Spread       decimal.Decimal `json:"spread"` // BestAsk - BestBid
	Timestamp    int64           `json:"ts"`

	DexLast         decimal.NullDecimal `json:"dex_last"`
	DexMinusBestAsk decimal.NullDecimal `json:"dex_minus_best_ask"`
}

// HasBid reports whether any venue supplied a bid.
func (v ArbitrageView) HasBid() bool {
	return v.BestBidVenue != ""
}

// HasAsk reports whether any venue supplied an ask.
func (v ArbitrageView) HasAsk() bool {
	return v.BestAskVenue != ""
}

// SpreadPercent returns Spread / BestAsk * 100, false when BestAsk is zero.
func (v ArbitrageView) SpreadPercent() (decimal.Decimal, bool) {
	if v.BestAsk.IsZero() {
		return decimal.Zero, false
	}
	return v.Spread.Div(v.BestAsk).Mul(hundred), true
}

// ComputeArbitrageView selects the lowest ask and the highest bid across
// venues. Ties go to the venue that appears first. The same venue may win
// both sides. It never fails: missing data yields the zero sentinel.
func ComputeArbitrageView(s MarketSnapshot) ArbitrageView {
	view := ArbitrageView{
		Symbol:    s.Symbol,
		BestBid:   decimal.Zero,
		BestAsk:   decimal.Zero,
		Spread:    decimal.Zero,
		Timestamp: s.Timestamp,
	}

	var bidFound, askFound bool
	for _, q := range s.Venues {
		if q.Ask.Valid && (!askFound || q.Ask.Decimal.LessThan(view.BestAsk)) {
			view.BestAsk = q.Ask.Decimal
			view.BestAskVenue = q.Venue
			askFound = true
		}
		if q.Bid.Valid && (!bidFound || q.Bid.Decimal.GreaterThan(view.BestBid)) {
			view.BestBid = q.Bid.Decimal
			view.BestBidVenue = q.Venue
			bidFound = true
		}
	}

	if bidFound && askFound {
		view.Spread = view.BestAsk.Sub(view.BestBid)
	}

	return view
}

// WithDex annotates the view with a DEX last price and its distance from
// the best CEX ask.
func (v ArbitrageView) WithDex(dexLast decimal.Decimal) ArbitrageView {
	v.DexLast = decimal.NewNullDecimal(dexLast)
	if v.HasAsk() {
		v.DexMinusBestAsk = decimal.NewNullDecimal(dexLast.Sub(v.BestAsk))
	}
	return v
}
