package reporter

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/trader-sentinel/business/market/app"
	"github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter for the Bubble Tea TUI.
type TUIReporter struct {
	send func(tea.Msg)
}

// NewTUIReporter creates a TUIReporter sending to the running program.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{send: ui.Send}
}

// Start marks the market step as connecting.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: "market", Status: "connecting"})
	return nil
}

// Report sends a signal to the TUI.
func (r *TUIReporter) Report(sig domain.Signal) {
	r.send(ui.SignalMsg{Signal: sig})
}

// UpdateView sends the latest best bid/ask to the TUI.
func (r *TUIReporter) UpdateView(snapshot domain.MarketSnapshot, view domain.ArbitrageView) {
	r.send(ui.ViewUpdateMsg{Snapshot: snapshot, View: view})
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.send(ui.ConnectionStatusMsg{Name: name, Connected: connected, Latency: latency})
}

// Stop is a no-op; the program is owned by main.
func (r *TUIReporter) Stop() error {
	return nil
}
