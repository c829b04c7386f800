package components

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// MarketRow is one symbol's best bid/ask summary.
type MarketRow struct {
	Symbol       string
	BestBid      decimal.Decimal
	BestBidVenue string
	BestAsk      decimal.Decimal
	BestAskVenue string
	Spread       decimal.Decimal
	SpreadPct    decimal.NullDecimal
	DexLast      decimal.NullDecimal
	Venues       int
	FailedVenues int
}

// MarketsComponent renders the per-symbol market table.
type MarketsComponent struct {
	rows map[string]MarketRow
}

// NewMarketsComponent creates a new markets component.
func NewMarketsComponent() *MarketsComponent {
	return &MarketsComponent{rows: make(map[string]MarketRow)}
}

// Update replaces the row for row.Symbol.
func (m *MarketsComponent) Update(row MarketRow) {
	m.rows[row.Symbol] = row
}

// View renders the markets component.
func (m *MarketsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("MARKETS"))
	sb.WriteString("\n\n")

	if len(m.rows) == 0 {
		sb.WriteString(dimStyle.Render("  Waiting for market data..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-10s  %20s  %20s  %10s  %12s  %7s\n",
		"Symbol", "Best Bid", "Best Ask", "Spread", "DEX", "Venues"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 90)) + "\n")

	symbols := make([]string, 0, len(m.rows))
	for s := range m.rows {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		row := m.rows[symbol]

		spread := dimStyle.Render(fmt.Sprintf("%10s", "-"))
		if row.SpreadPct.Valid {
			style := negativeStyle
			if row.Spread.IsPositive() {
				style = positiveStyle
			}
			spread = style.Render(fmt.Sprintf("%9s%%", row.SpreadPct.Decimal.StringFixed(3)))
		}

		dex := "-"
		if row.DexLast.Valid {
			dex = "$" + row.DexLast.Decimal.StringFixed(2)
		}

		venues := fmt.Sprintf("%d", row.Venues)
		if row.FailedVenues > 0 {
			venues = negativeStyle.Render(fmt.Sprintf("%d/%d", row.Venues-row.FailedVenues, row.Venues))
		}

		sb.WriteString(fmt.Sprintf("  %-10s  %20s  %20s  %s  %12s  %7s\n",
			symbol,
			side(row.BestBid, row.BestBidVenue),
			side(row.BestAsk, row.BestAskVenue),
			spread,
			dex,
			venues,
		))
	}

	return sb.String()
}

func side(price decimal.Decimal, venue string) string {
	if venue == "" {
		return "-"
	}
	return fmt.Sprintf("$%s %s", price.StringFixed(2), venue)
}
