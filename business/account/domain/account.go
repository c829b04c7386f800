// Package domain contains the core domain types for the account context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	paymentdomain "github.com/fd1az/trader-sentinel/business/payment/domain"
)

// User is the signed-in account.
type User struct {
	ID             string             `json:"id"`
	WalletAddress  string             `json:"walletAddress"`
	Email          string             `json:"email,omitempty"`
	Subscription   paymentdomain.Tier `json:"subscription"`
	ThronosBalance decimal.Decimal    `json:"thronosBalance"`
	RewardsBalance decimal.Decimal    `json:"rewardsBalance"`
	ReferralCode   string             `json:"referralCode"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Wallet is the connected wallet session. It is never persisted.
type Wallet struct {
	Connected bool
	Address   common.Address
	ChainID   uint64
	Balance   decimal.Decimal
}

// DisconnectedWallet is the wallet state after logout or disconnect.
func DisconnectedWallet() Wallet {
	return Wallet{Balance: decimal.Zero}
}

// Theme is the UI color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Settings are the user preferences.
type Settings struct {
	Notifications  bool   `json:"notifications"`
	SoundAlerts    bool   `json:"soundAlerts"`
	HapticFeedback bool   `json:"hapticFeedback"`
	Theme          Theme  `json:"theme"`
	Currency       string `json:"currency"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Notifications:  true,
		SoundAlerts:    true,
		HapticFeedback: true,
		Theme:          ThemeDark,
		Currency:       "USD",
	}
}

// SettingsPatch is a partial settings update; nil fields are kept.
type SettingsPatch struct {
	Notifications  *bool
	SoundAlerts    *bool
	HapticFeedback *bool
	Theme          *Theme
	Currency       *string
}

// Apply returns s with the non-nil fields of p.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.SoundAlerts != nil {
		s.SoundAlerts = *p.SoundAlerts
	}
	if p.HapticFeedback != nil {
		s.HapticFeedback = *p.HapticFeedback
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	return s
}

// DefaultWatchlist is the symbol list of a fresh install.
func DefaultWatchlist() []string {
	return []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}
}
