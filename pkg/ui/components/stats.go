package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Stats are the session counters shown under the dashboard.
type Stats struct {
	Updates      int64 // arbitrage views computed
	Signals      int64
	FailedVenues int64 // venue quotes that carried an error
	Actions      int64 // funding actions that reached a terminal state
	Errors       int64
}

// SignalRate is the share of updates that raised a signal, in percent.
func (s Stats) SignalRate() float64 {
	if s.Updates == 0 {
		return 0
	}
	return float64(s.Signals) / float64(s.Updates) * 100
}

type StatsComponent struct {
	stats Stats
}

func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

func (s *StatsComponent) Update(stats Stats) { s.stats = stats }
func (s *StatsComponent) Stats() Stats { return s.stats }

var (
	statLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#64748B"))
	statValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8FAFC")).Bold(true)
	statAlarm = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E")).Bold(true)
)

func (s *StatsComponent) View() string {
	st := s.stats
	value := func(n int64, alarm bool) string {
		if alarm && n > 0 {
			return statAlarm.Render(fmt.Sprint(n))
		}
		return statValue.Render(fmt.Sprint(n))
	}

	cells := []string{
		"Updates: " + value(st.Updates, false),
		fmt.Sprintf("Signals: %s (%.1f%%)", value(st.Signals, false), st.SignalRate()),
		"Failed venue quotes: " + value(st.FailedVenues, true),
		"Actions: " + value(st.Actions, false),
		"Errors: " + value(st.Errors, true),
	}
	return statLabel.Render("STATS") + "\n" + strings.Join(cells, "  │  ")
}
