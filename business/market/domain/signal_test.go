package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDetectSignal(t *testing.T) {
	view := ComputeArbitrageView(MarketSnapshot{
		Symbol: "BTC/USDT",
		Venues: []VenueQuote{quote("A", "100", "101"), quote("B", "99", "100.5")},
	})

	tests := []struct {
		name      string
		threshold string
		wantEmit  bool
	}{
		{"below_spread_percent", "0.1", true},
		{"exactly_at_threshold", "0.49751243781095", true},
		{"above_spread_percent", "0.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, ok := DetectSignal(view, decimal.RequireFromString(tt.threshold))
			if ok != tt.wantEmit {
				t.Fatalf("emit = %v, want %v", ok, tt.wantEmit)
			}
			if !ok {
				return
			}

			if sig.Type != SignalArbitrage {
				t.Errorf("Type = %s", sig.Type)
			}
			if sig.Symbol != "BTC/USDT" {
				t.Errorf("Symbol = %s", sig.Symbol)
			}
			if len(sig.Venues) != 2 || sig.Venues[0] != "B" || sig.Venues[1] != "A" {
				t.Errorf("Venues = %v, want [B A]", sig.Venues)
			}
			if !sig.Profit.Valid || !sig.Profit.Decimal.Round(4).Equal(decimal.RequireFromString("0.4975")) {
				t.Errorf("Profit = %v, want ~0.4975", sig.Profit.Decimal)
			}
			if sig.Message != "Buy on B at $100.50, sell on A at $100.00" {
				t.Errorf("Message = %q", sig.Message)
			}
			if !strings.HasPrefix(sig.ID, "arb-") {
				t.Errorf("ID = %q", sig.ID)
			}
		})
	}
}

func TestDetectSignal_ZeroAskNeverEmits(t *testing.T) {
	view := ArbitrageView{BestAsk: decimal.Zero, BestBid: decimal.Zero, Spread: decimal.Zero}

	if _, ok := DetectSignal(view, decimal.RequireFromString("0.1")); ok {
		t.Error("expected no signal for zero ask")
	}
	if _, ok := DetectSignal(view, decimal.NewFromInt(-100)); ok {
		t.Error("expected no signal for zero ask even with negative threshold")
	}
}

func TestDetectSignal_MonotonicInThreshold(t *testing.T) {
	view := ComputeArbitrageView(MarketSnapshot{
		Symbol: "ETH/USDT",
		Venues: []VenueQuote{quote("A", "3350", "3420"), quote("B", "3380", "3400")},
	})

	high, ok := DetectSignal(view, decimal.RequireFromString("0.5"))
	if !ok {
		t.Fatal("expected signal at 0.5")
	}

	for _, lower := range []string{"0.4", "0.1", "0", "-1"} {
		low, ok := DetectSignal(view, decimal.RequireFromString(lower))
		if !ok {
			t.Fatalf("expected signal at %s", lower)
		}
		if !low.Profit.Decimal.Equal(high.Profit.Decimal) {
			t.Errorf("profit at %s = %s, want %s", lower, low.Profit.Decimal, high.Profit.Decimal)
		}
	}
}

func TestDetectSignal_UniqueIDs(t *testing.T) {
	view := ComputeArbitrageView(MarketSnapshot{Venues: []VenueQuote{quote("A", "1", "2")}})

	a, _ := DetectSignal(view, decimal.Zero)
	b, _ := DetectSignal(view, decimal.Zero)
	if a.ID == b.ID {
		t.Errorf("expected distinct ids, both %q", a.ID)
	}
}
