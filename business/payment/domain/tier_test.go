package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPackageFor(t *testing.T) {
	tests := []struct {
		tier       Tier
		usd        string
		thronos    string
		multiplier string
	}{
		{TierFree, "0", "0", "1"},
		{TierStarter, "29", "25", "1"},
		{TierPro, "99", "79", "1.5"},
		{TierElite, "299", "229", "2.5"},
		{TierWhale, "999", "749", "5"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			p, ok := PackageFor(tt.tier)
			if !ok {
				t.Fatalf("package %s missing", tt.tier)
			}
			if !p.PriceUSD.Equal(decimal.RequireFromString(tt.usd)) {
				t.Errorf("PriceUSD = %s", p.PriceUSD)
			}
			if !p.PriceIn("USDT").Equal(decimal.RequireFromString(tt.usd)) {
				t.Errorf("PriceIn(USDT) = %s", p.PriceIn("USDT"))
			}
			if !p.PriceIn("thronos").Equal(decimal.RequireFromString(tt.thronos)) {
				t.Errorf("PriceIn(thronos) = %s", p.PriceIn("thronos"))
			}
			if !tt.tier.Multiplier().Equal(decimal.RequireFromString(tt.multiplier)) {
				t.Errorf("Multiplier = %s", tt.tier.Multiplier())
			}
		})
	}
}

func TestParseTier(t *testing.T) {
	if tier, ok := ParseTier(" Pro "); !ok || tier != TierPro {
		t.Errorf("ParseTier(Pro) = %s, %v", tier, ok)
	}
	if _, ok := ParseTier("platinum"); ok {
		t.Error("unexpected tier")
	}
	if !Tier("platinum").Multiplier().Equal(decimal.NewFromInt(1)) {
		t.Error("unknown tier multiplier should default to 1")
	}
	if len(PaidPackages()) != 4 {
		t.Errorf("paid packages = %d", len(PaidPackages()))
	}
}

func TestSubscriptionStatus_Active(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status SubscriptionStatus
		want   bool
	}{
		{"free", SubscriptionStatus{Tier: TierFree}, false},
		{"paid_no_expiry", SubscriptionStatus{Tier: TierPro}, true},
		{"paid_future_expiry", SubscriptionStatus{Tier: TierPro, ExpiresAt: now.Add(time.Hour)}, true},
		{"paid_expired", SubscriptionStatus{Tier: TierPro, ExpiresAt: now.Add(-time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Active(now); got != tt.want {
				t.Errorf("Active = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaymentResult_Shapes(t *testing.T) {
	ok := Succeeded("0xabc")
	if !ok.Success || ok.Handle != "0xabc" || ok.Error != "" {
		t.Errorf("Succeeded = %+v", ok)
	}

	failed := Failed("", ActionStake.FallbackMessage())
	if failed.Success || failed.Error != "Staking failed" {
		t.Errorf("Failed = %+v", failed)
	}

	if got := Failed("", ""); got.Error != "Unknown error" {
		t.Errorf("Failed empty = %+v", got)
	}
}

func TestActionKind(t *testing.T) {
	tests := []struct {
		kind     ActionKind
		valid    bool
		spends   bool
		fallback string
	}{
		{ActionPaySubscription, true, true, "Payment failed"},
		{ActionAddLiquidity, true, true, "Failed to add liquidity"},
		{ActionStake, true, false, "Staking failed"},
		{ActionClaimRewards, true, false, "Claim failed"},
		{ActionKind("bogus"), false, false, "Unknown error"},
	}
	for _, tt := range tests {
		if tt.kind.Valid() != tt.valid {
			t.Errorf("%s Valid = %v", tt.kind, !tt.valid)
		}
		if tt.kind.SpendsTokens() != tt.spends {
			t.Errorf("%s SpendsTokens = %v", tt.kind, !tt.spends)
		}
		if tt.kind.FallbackMessage() != tt.fallback {
			t.Errorf("%s fallback = %q", tt.kind, tt.kind.FallbackMessage())
		}
	}
}

func TestPool_EstimatedRewards(t *testing.T) {
	p, ok := PoolByID("thronos-usdt")
	if !ok {
		t.Fatal("pool missing")
	}
	got := p.EstimatedRewards(decimal.NewFromInt(1000))
	if !got.Equal(decimal.NewFromInt(125)) {
		t.Errorf("EstimatedRewards = %s, want 125", got)
	}
	if _, ok := PoolByID("nope"); ok {
		t.Error("unexpected pool")
	}
}
