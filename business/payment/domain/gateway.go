package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardsInfo is the gateway's rewards breakdown for an address.
type RewardsInfo struct {
	TotalEarned      decimal.Decimal `json:"totalEarned"`
	PendingRewards   decimal.Decimal `json:"pendingRewards"`
	ClaimableRewards decimal.Decimal `json:"claimableRewards"`
	StakingRewards   decimal.Decimal `json:"stakingRewards"`
	LiquidityRewards decimal.Decimal `json:"liquidityRewards"`
	ReferralRewards  decimal.Decimal `json:"referralRewards"`
}

// SubscriptionStatus is the gateway's view of an address' subscription.
type SubscriptionStatus struct {
	Tier      Tier      `json:"tier"`
	ExpiresAt time.Time `json:"expiresAt"`
	AutoRenew bool      `json:"autoRenew"`
}

// Active reports whether the subscription is paid and unexpired at now.
func (s SubscriptionStatus) Active(now time.Time) bool {
	return s.Tier.IsPaid() && (s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt))
}

// LiquidityPosition is one pool position of an address.
type LiquidityPosition struct {
	PoolID         string          `json:"poolId"`
	TokenA         string          `json:"tokenA"`
	TokenB         string          `json:"tokenB"`
	AmountA        decimal.Decimal `json:"amountA"`
	AmountB        decimal.Decimal `json:"amountB"`
	LPTokens       decimal.Decimal `json:"lpTokens"`
	PendingRewards decimal.Decimal `json:"pendingRewards"`
	APR            decimal.Decimal `json:"apr"`
}

// StakingInfo is the staking position of an address.
type StakingInfo struct {
	StakedAmount   decimal.Decimal `json:"stakedAmount"`
	PendingRewards decimal.Decimal `json:"pendingRewards"`
	APR            decimal.Decimal `json:"apr"`
}

// FiatSessionRequest starts a card checkout for a package.
type FiatSessionRequest struct {
	PackageID  Tier   `json:"packageId"`
	Email      string `json:"email"`
	Currency   string `json:"currency"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// Deep links the checkout redirects back to.
const (
	FiatSuccessURL = "tradersentinel://payment-success"
	FiatCancelURL  = "tradersentinel://payment-cancel"
)
