package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardType names the activity a reward was earned for.
type RewardType string

const (
	RewardReferral    RewardType = "referral"
	RewardDailyLogin  RewardType = "daily_login"
	RewardSignalUsage RewardType = "signal_usage"
	RewardLiquidity   RewardType = "liquidity"
	RewardStaking     RewardType = "staking"
)

// Reward amounts in THRONOS and yearly rates.
var (
	ReferralBonus   = decimal.NewFromInt(50)
	DailyLoginBonus = decimal.NewFromInt(1)
	SignalUsageFee  = decimal.RequireFromString("0.5")
	LiquidityAPY    = decimal.RequireFromString("0.12")
	StakingAPY      = decimal.RequireFromString("0.08")
)

// RewardEntry is one credited reward.
type RewardEntry struct {
	Amount decimal.Decimal `json:"amount"`
	Type   RewardType      `json:"type"`
	Date   time.Time       `json:"date"`
}

// Rewards is the running rewards ledger. Total only grows; Pending moves
// to Claimed on a claim.
type Rewards struct {
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pending"`
	Claimed decimal.Decimal `json:"claimed"`
	History []RewardEntry   `json:"history"`
}

// Add credits amount, newest entry first.
func (r Rewards) Add(amount decimal.Decimal, typ RewardType, at time.Time) Rewards {
	history := make([]RewardEntry, 0, len(r.History)+1)
	history = append(history, RewardEntry{Amount: amount, Type: typ, Date: at})
	history = append(history, r.History...)

	return Rewards{
		Total:   r.Total.Add(amount),
		Pending: r.Pending.Add(amount),
		Claimed: r.Claimed,
		History: history,
	}
}

// Claim moves every pending reward to claimed.
func (r Rewards) Claim() Rewards {
	r.Claimed = r.Claimed.Add(r.Pending)
	r.Pending = decimal.Zero
	return r
}

// StakingYield estimates the yearly staking reward for amount.
func StakingYield(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(StakingAPY)
}
