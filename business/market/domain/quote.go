// Package domain contains the core domain types for the market context.
package domain

import "github.com/shopspring/decimal"

// VenueKind distinguishes centralized from decentralized venues.
type VenueKind string

const (
	VenueCEX VenueKind = "cex"
	VenueDEX VenueKind = "dex"
)

// VenueQuote is one venue's observation for a symbol. Null price fields
// mean the venue reported nothing for that side, never zero.
type VenueQuote struct {
	Venue     string              `json:"venue"`
	Kind      VenueKind           `json:"kind,omitempty"`
	Last      decimal.NullDecimal `json:"last"`
	Bid       decimal.NullDecimal `json:"bid"`
	Ask       decimal.NullDecimal `json:"ask"`
	Timestamp int64               `json:"ts"` // ms since epoch
	Error     string              `json:"error,omitempty"`

	// DEX metadata, empty for centralized venues.
	Pair         string              `json:"pair,omitempty"`
	Chain        string              `json:"chain,omitempty"`
	Dex          string              `json:"dex,omitempty"`
	LiquidityUSD decimal.NullDecimal `json:"liquidity_usd"`
}

// Failed reports whether the venue failed to respond.
func (q VenueQuote) Failed() bool {
	return q.Error != ""
}

// FailedQuote builds the quote recorded for a venue that errored.
func FailedQuote(venue string, kind VenueKind, ts int64, err error) VenueQuote {
	return VenueQuote{Venue: venue, Kind: kind, Timestamp: ts, Error: err.Error()}
}

// MarketSnapshot is a symbol plus its venue quotes, in no particular order.
type MarketSnapshot struct {
	Symbol    string       `json:"symbol"`
	Timestamp int64        `json:"ts"`
	Venues    []VenueQuote `json:"venues"`
}

// CEXOnly returns a copy of the snapshot without DEX quotes.
func (s MarketSnapshot) CEXOnly() MarketSnapshot {
	out := MarketSnapshot{Symbol: s.Symbol, Timestamp: s.Timestamp}
	for _, q := range s.Venues {
		if q.Kind != VenueDEX {
			out.Venues = append(out.Venues, q)
		}
	}
	return out
}

// FirstDEX returns the first DEX quote carrying a last price.
func (s MarketSnapshot) FirstDEX() (VenueQuote, bool) {
	for _, q := range s.Venues {
		if q.Kind == VenueDEX && q.Last.Valid {
			return q, true
		}
	}
	return VenueQuote{}, false
}

// Price wraps a decimal as a present price field.
func Price(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}

// ParsePrice parses a venue price field. Empty or unparsable input yields a
// null price.
func ParsePrice(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
