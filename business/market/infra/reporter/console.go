// Package reporter contains the signal reporters of the market context.
package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fd1az/trader-sentinel/business/market/app"
	"github.com/fd1az/trader-sentinel/business/market/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "Trader Sentinel Started")
	fmt.Fprintln(r.out, "=======================")
	return nil
}

// Report outputs a signal to the console.
func (r *ConsoleReporter) Report(sig domain.Signal) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE SIGNAL")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "ID:             %s\n", sig.ID)
	fmt.Fprintf(r.out, "Timestamp:      %s\n", sig.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Symbol:         %s\n", sig.Symbol)
	fmt.Fprintf(r.out, "Venues:         %s\n", strings.Join(sig.Venues, " -> "))
	if sig.Profit.Valid {
		fmt.Fprintf(r.out, "Spread:         %s%%\n", sig.Profit.Decimal.StringFixed(4))
	}
	fmt.Fprintf(r.out, "Action:         %s\n", sig.Message)
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateView is a no-op; the console only prints signals.
func (r *ConsoleReporter) UpdateView(domain.MarketSnapshot, domain.ArbitrageView) {}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency.Round(time.Millisecond))
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Trader Sentinel Stopped")
	return nil
}
