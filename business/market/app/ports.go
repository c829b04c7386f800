// Package app contains application services and port definitions for the market context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/trader-sentinel/business/market/domain"
)

// MarketDataSource serves per-symbol venue snapshots.
type MarketDataSource interface {
	// Snapshot returns the latest venue quotes for symbol.
	Snapshot(ctx context.Context, symbol string) (domain.MarketSnapshot, error)

	// Health checks that the source is reachable.
	Health(ctx context.Context) error
}

// SnapshotStreamer pushes snapshots as they are produced. A closed channel
// means the stream ended.
type SnapshotStreamer interface {
	Stream(ctx context.Context, symbol string, interval time.Duration) (<-chan domain.MarketSnapshot, error)
}

// MarketStore holds the latest views and the signal history.
type MarketStore interface {
	SetMarketData(symbol string, view domain.ArbitrageView)
	AddSignal(sig domain.Signal)
	Watchlist() []string
}

// Reporter defines the interface for reporting market signals.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a signal to be displayed/logged.
	Report(sig domain.Signal)

	// UpdateView updates the current best bid/ask display.
	UpdateView(snapshot domain.MarketSnapshot, view domain.ArbitrageView)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
