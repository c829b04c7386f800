// Package domain contains the core domain types for the payment context.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/trader-sentinel/internal/asset"
)

// Tier is a subscription level. Each tier maps to one price and one
// rewards multiplier.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierPro     Tier = "pro"
	TierElite   Tier = "elite"
	TierWhale   Tier = "whale"
)

// Package is a purchasable subscription.
type Package struct {
	ID           Tier
	Name         string
	PriceUSD     decimal.Decimal
	PriceThronos decimal.Decimal
	Multiplier   decimal.Decimal
	Features     []string
}

// PriceIn returns the package price when paid with tokenSymbol. THRONOS
// gets the discounted price, stablecoins pay the USD price.
func (p Package) PriceIn(tokenSymbol string) decimal.Decimal {
	if strings.EqualFold(tokenSymbol, asset.SymbolTHRONOS) {
		return p.PriceThronos
	}
	return p.PriceUSD
}

var packages = map[Tier]Package{
	TierFree: {
		ID:           TierFree,
		Name:         "Free",
		PriceUSD:     decimal.Zero,
		PriceThronos: decimal.Zero,
		Multiplier:   decimal.NewFromInt(1),
	},
	TierStarter: {
		ID:           TierStarter,
		Name:         "Starter",
		PriceUSD:     decimal.NewFromInt(29),
		PriceThronos: decimal.NewFromInt(25),
		Multiplier:   decimal.RequireFromString("1.0"),
		Features: []string{
			"Real-time market signals",
			"Basic arbitrage alerts",
			"5 trading pairs",
			"Email notifications",
		},
	},
	TierPro: {
		ID:           TierPro,
		Name:         "Pro",
		PriceUSD:     decimal.NewFromInt(99),
		PriceThronos: decimal.NewFromInt(79),
		Multiplier:   decimal.RequireFromString("1.5"),
		Features: []string{
			"All Starter features",
			"Advanced arbitrage detection",
			"Unlimited trading pairs",
			"Push notifications",
			"Priority support",
			"API access",
		},
	},
	TierElite: {
		ID:           TierElite,
		Name:         "Elite",
		PriceUSD:     decimal.NewFromInt(299),
		PriceThronos: decimal.NewFromInt(229),
		Multiplier:   decimal.RequireFromString("2.5"),
		Features: []string{
			"All Pro features",
			"Custom alerts",
			"Trading bot integration",
			"Exclusive signals",
			"24/7 support",
			"Early access to features",
			"Liquidity pool rewards",
		},
	},
	TierWhale: {
		ID:           TierWhale,
		Name:         "Whale",
		PriceUSD:     decimal.NewFromInt(999),
		PriceThronos: decimal.NewFromInt(749),
		Multiplier:   decimal.RequireFromString("5.0"),
		Features: []string{
			"All Elite features",
			"Personal trading assistant",
			"Custom strategy development",
			"Direct line to developers",
			"Governance voting rights",
			"Maximum liquidity rewards",
			"Revenue sharing",
		},
	},
}

// PackageFor returns the package of a tier.
func PackageFor(t Tier) (Package, bool) {
	p, ok := packages[t]
	return p, ok
}

// PaidPackages returns the purchasable packages in ascending price.
func PaidPackages() []Package {
	return []Package{packages[TierStarter], packages[TierPro], packages[TierElite], packages[TierWhale]}
}

// ParseTier maps a package id to a Tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := packages[t]
	return t, ok
}

// Multiplier returns the rewards multiplier of t, 1 for unknown tiers.
func (t Tier) Multiplier() decimal.Decimal {
	if p, ok := packages[t]; ok {
		return p.Multiplier
	}
	return decimal.NewFromInt(1)
}

// IsPaid reports whether t is above the free tier.
func (t Tier) IsPaid() bool {
	return t != TierFree && t != ""
}
