// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// SignalRow represents a signal in the list.
type SignalRow struct {
	Time    string
	Symbol  string
	Message string
	Profit  decimal.Decimal
}

// SignalsComponent renders the signal history, newest first.
type SignalsComponent struct {
	rows    []SignalRow
	maxRows int
	visible int
	offset  int
}

// NewSignalsComponent creates a signals component keeping maxRows entries
// and showing visible of them at a time.
func NewSignalsComponent(maxRows, visible int) *SignalsComponent {
	return &SignalsComponent{
		rows:    make([]SignalRow, 0),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add prepends a signal, dropping the oldest beyond maxRows.
func (s *SignalsComponent) Add(row SignalRow) {
	s.rows = append([]SignalRow{row}, s.rows...)
	if len(s.rows) > s.maxRows {
		s.rows = s.rows[:s.maxRows]
	}
	if s.offset > 0 {
		s.offset = min(s.offset+1, s.maxOffset())
	}
}

// Len returns the number of stored signals.
func (s *SignalsComponent) Len() int {
	return len(s.rows)
}

// Clear clears all signals.
func (s *SignalsComponent) Clear() {
	s.rows = make([]SignalRow, 0)
	s.offset = 0
}

// ScrollUp moves the window towards newer signals.
func (s *SignalsComponent) ScrollUp() {
	if s.offset > 0 {
		s.offset--
	}
}

// ScrollDown moves the window towards older signals.
func (s *SignalsComponent) ScrollDown() {
	if s.offset < s.maxOffset() {
		s.offset++
	}
}

func (s *SignalsComponent) maxOffset() int {
	return max(len(s.rows)-s.visible, 0)
}

// View renders the signals component.
func (s *SignalsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("SIGNALS (%d/%d)", len(s.rows), s.maxRows)))
	sb.WriteString("\n\n")

	if len(s.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  No signals detected yet..."))
		return sb.String()
	}

	end := min(s.offset+s.visible, len(s.rows))
	for _, row := range s.rows[s.offset:end] {
		sb.WriteString(fmt.Sprintf("  %s  %-10s %s  %s\n",
			mutedStyle.Render(row.Time),
			row.Symbol,
			profitStyle.Render(fmt.Sprintf("%6s%%", row.Profit.StringFixed(3))),
			row.Message,
		))
	}

	if len(s.rows) > s.visible {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  showing %d-%d", s.offset+1, end)))
	}

	return sb.String()
}
