// Package ui provides the Bubble Tea TUI for the trader sentinel.
package ui

import (
	"time"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	paymentDomain "github.com/fd1az/trader-sentinel/business/payment/domain"
)

// SignalMsg is sent when an arbitrage signal is detected.
type SignalMsg struct {
	Signal marketDomain.Signal
}

// ViewUpdateMsg is sent when a symbol's best bid/ask is recomputed.
type ViewUpdateMsg struct {
	Snapshot marketDomain.MarketSnapshot
	View     marketDomain.ArbitrageView
}

// ConnectionStatusMsg is sent when connection status changes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// TransitionMsg is sent on every funding action state change. Terminal
// transitions count as completed actions.
type TransitionMsg struct {
	Transition paymentDomain.Transition
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartupMsg moves a startup step ("config", "store", "wallet", "market")
// to Status: "connecting", "connected", "done" or "failed".
type StartupMsg struct {
	Step    string
	Status  string
	Message string // shown in the activity feed when set
}
