package domain

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

// ActionKind is a funding action the sequencer can run.
type ActionKind string

const (
	ActionPaySubscription ActionKind = "pay-subscription"
	ActionAddLiquidity    ActionKind = "add-liquidity"
	ActionStake           ActionKind = "stake"
	ActionClaimRewards    ActionKind = "claim-rewards"
)

// Kinds lists every supported action.
var Kinds = []ActionKind{ActionPaySubscription, ActionAddLiquidity, ActionStake, ActionClaimRewards}

// Valid reports whether k is a supported action.
func (k ActionKind) Valid() bool {
	return slices.Contains(Kinds, k)
}

// SpendsTokens reports whether the action transfers caller tokens and
// therefore needs the allowance check.
func (k ActionKind) SpendsTokens() bool {
	return k == ActionPaySubscription || k == ActionAddLiquidity
}

// FallbackMessage is reported when a collaborator fails without a message.
func (k ActionKind) FallbackMessage() string {
	switch k {
	case ActionPaySubscription:
		return "Payment failed"
	case ActionAddLiquidity:
		return "Failed to add liquidity"
	case ActionStake:
		return "Staking failed"
	case ActionClaimRewards:
		return "Claim failed"
	default:
		return "Unknown error"
	}
}

// PaymentRequest carries the inputs of every action kind. Fields not used
// by a kind are ignored.
type PaymentRequest struct {
	Payer     common.Address
	ChainID   uint64
	PackageID Tier   // pay-subscription
	Token     string // pay-subscription token symbol, add-liquidity token A
	Amount    string // decimal in token units
	TokenB    string // add-liquidity
	AmountB   string // add-liquidity
	PoolID    string // add-liquidity, informational
}
