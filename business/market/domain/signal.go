package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignalType enumerates signal categories.
type SignalType string

const (
	SignalArbitrage   SignalType = "arbitrage"
	SignalAlert       SignalType = "alert"
	SignalOpportunity SignalType = "opportunity"
)

// Signal is an immutable notification-worthy market event.
type Signal struct {
	ID        string              `json:"id"`
	Type      SignalType          `json:"type"`
	Symbol    string              `json:"symbol"`
	Message   string              `json:"message"`
	Profit    decimal.NullDecimal `json:"profit"` // percent
	Timestamp time.Time           `json:"timestamp"`
	Venues    []string            `json:"venues"`
}

// DetectSignal emits an arbitrage signal when the view's relative spread
// reaches minSpreadPercent. A zero best ask never emits.
func DetectSignal(view ArbitrageView, minSpreadPercent decimal.Decimal) (Signal, bool) {
	pct, ok := view.SpreadPercent()
	if !ok || pct.LessThan(minSpreadPercent) {
		return Signal{}, false
	}

	return Signal{
		ID:     "arb-" + uuid.NewString(),
		Type:   SignalArbitrage,
		Symbol: view.Symbol,
		Message: fmt.Sprintf("Buy on %s at $%s, sell on %s at $%s",
			view.BestAskVenue, view.BestAsk.StringFixed(2),
			view.BestBidVenue, view.BestBid.StringFixed(2)),
		Profit:    decimal.NewNullDecimal(pct),
		Timestamp: time.Now(),
		Venues:    []string{view.BestAskVenue, view.BestBidVenue},
	}, true
}
