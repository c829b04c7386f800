// Package ui provides the Bubble Tea TUI for the trader sentinel.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	marketDomain "github.com/fd1az/trader-sentinel/business/market/domain"
	"github.com/fd1az/trader-sentinel/pkg/ui/components"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// MaxSignals matches the signal history bound.
const MaxSignals = marketDomain.MaxSignalHistory

// Startup step keys, in display order.
var stepOrder = []string{"config", "store", "wallet", "market"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	markets *components.MarketsComponent
	signals *components.SignalsComponent
	status  *components.StatusComponent
	stats   *components.StatsComponent
	keys    KeyMap
	help    help.Model

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready      bool
	quitting   bool
	paused     bool // Freeze the signal list
	width      int
	height     int
	lastUpdate time.Time
	errors     []ErrorEntry // Persistent error panel (last 3)
	activity   []string     // Recent activity messages

	// Startup state
	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time
}

// New creates a new TUI model.
func New() Model {
	now := time.Now()
	return Model{
		markets:      components.NewMarketsComponent(),
		signals:      components.NewSignalsComponent(MaxSignals, 10),
		status:       components.NewStatusComponent(),
		stats:        components.NewStatsComponent(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		errors:       make([]ErrorEntry, 0, 3),
		activity:     make([]string, 0, 8),
		startupSteps: map[string]*StartupStep{
			"config": {Name: "Loading configuration", Status: "pending"},
			"store":  {Name: "Restoring saved state", Status: "pending"},
			"wallet": {Name: "Connecting wallet", Status: "pending"},
			"market": {Name: "Connecting to market API", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m *Model) enterStartup() {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Trigger callback directly (don't use Send() from within Update)
	if OnStartModules != nil {
		go OnStartModules()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to startup
		if m.phase == PhaseWelcome {
			m.enterStartup()
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.ClearSignals):
			m.signals.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.signals.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.signals.ScrollDown()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, 3)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.enterStartup()
		}
		return m, tickCmd()

	case SignalMsg:
		stats := m.stats.Stats()
		stats.Signals++
		m.stats.Update(stats)
		if !m.paused {
			m.signals.Add(components.SignalRow{
				Time:    msg.Signal.Timestamp.Format("15:04:05"),
				Symbol:  msg.Signal.Symbol,
				Message: msg.Signal.Message,
				Profit:  msg.Signal.Profit.Decimal,
			})
		}
		m.lastUpdate = time.Now()

	case ViewUpdateMsg:
		m.markets.Update(marketRow(msg.Snapshot, msg.View))
		stats := m.stats.Stats()
		stats.Updates++
		for _, q := range msg.Snapshot.Venues {
			if q.Failed() {
				stats.FailedVenues++
			}
		}
		m.stats.Update(stats)
		m.lastUpdate = time.Now()
		m.markStep("market", "connected")

	case ConnectionStatusMsg:
		m.status.Update(components.ConnectionStatus{
			Name:       msg.Name,
			Connected:  msg.Connected,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()
		if msg.Connected {
			m.markStep("market", "connected")
		} else {
			m.markStep("market", "connecting")
		}

	case TransitionMsg:
		t := msg.Transition
		line := fmt.Sprintf("%s: %s → %s", t.Action, t.From, t.To)
		if t.Token != "" {
			line += " (" + t.Token + ")"
		}
		m.activity = addActivity(m.activity, line)
		if t.To.IsTerminal() {
			stats := m.stats.Stats()
			stats.Actions++
			if t.Err != nil {
				stats.Errors++
				m = m.addError(fmt.Sprintf("%s: %v", t.Action, t.Err))
			}
			m.stats.Update(stats)
		}

	case ErrorMsg:
		stats := m.stats.Stats()
		stats.Errors++
		m.stats.Update(stats)
		m = m.addError(msg.Error.Error())

	case StartupMsg:
		m.markStep(msg.Step, msg.Status)
		if msg.Message != "" {
			m.activity = addActivity(m.activity, msg.Message)
		}
	}

	return m, nil
}

func (m *Model) markStep(name, status string) {
	if step, ok := m.startupSteps[name]; ok {
		step.Status = status
	}
	for _, step := range m.startupSteps {
		if step.Status != "connected" && step.Status != "done" {
			return
		}
	}
	m.startupComplete = true
	if m.phase == PhaseStartup {
		m.phase = PhaseDashboard
	}
}

func (m Model) addError(message string) Model {
	m.errors = append(m.errors, ErrorEntry{Message: message, Timestamp: time.Now()})
	if len(m.errors) > 3 {
		m.errors = m.errors[len(m.errors)-3:]
	}
	return m
}

func marketRow(snapshot marketDomain.MarketSnapshot, view marketDomain.ArbitrageView) components.MarketRow {
	row := components.MarketRow{
		Symbol:       view.Symbol,
		BestBid:      view.BestBid,
		BestBidVenue: view.BestBidVenue,
		BestAsk:      view.BestAsk,
		BestAskVenue: view.BestAskVenue,
		Spread:       view.Spread,
		DexLast:      view.DexLast,
		Venues:       len(snapshot.Venues),
	}
	if view.HasBid() && view.HasAsk() {
		if pct, ok := view.SpreadPercent(); ok {
			row.SpreadPct.Decimal = pct
			row.SpreadPct.Valid = true
		}
	}
	if !row.DexLast.Valid {
		if dex, ok := snapshot.FirstDEX(); ok {
			row.DexLast = dex.Last
		}
	}
	for _, q := range snapshot.Venues {
		if q.Failed() {
			row.FailedVenues++
		}
	}
	return row
}

// addActivity adds an activity message and returns the updated slice (keeps last 6).
func addActivity(feed []string, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s", timestamp, message)
	feed = append(feed, line)
	if len(feed) > 6 {
		feed = feed[len(feed)-6:]
	}
	return feed
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if !m.startupComplete && m.stats.Stats().Updates == 0 {
			return m.renderStartupScreen()
		}
	}

	var b strings.Builder

	b.WriteString(BannerStyle.Render(" 🛰  Trader Sentinel "))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	top := m.markets.View()

	var bottom strings.Builder
	bottom.WriteString(m.signals.View())
	bottom.WriteString("\n\n")
	bottom.WriteString(m.renderActivityFeed())

	width := max(m.width-4, 40)
	b.WriteString(PanelStyle.Width(width).Render(top))
	b.WriteString("\n")
	b.WriteString(PanelStyle.Width(width).Render(bottom.String()))
	b.WriteString("\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(BadStyle.Bold(true).Render("ERRORS"))
		b.WriteString(DimStyle.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(BadStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(DimStyle.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(CautionStyle.Bold(true).Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderActivityFeed renders the recent activity feed.
func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(SectionStyle.Render("ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activity) == 0 {
		sb.WriteString(DimStyle.Render("  Nothing yet..."))
		return sb.String()
	}
	for _, line := range m.activity {
		sb.WriteString(DimStyle.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dots := strings.Repeat(".", int(elapsed.Milliseconds()/300)%4)

	var sb strings.Builder
	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗███████╗███╗   ██╗████████╗██╗███╗   ██╗███████╗██╗
   ██╔════╝██╔════╝████╗  ██║╚══██╔══╝██║████╗  ██║██╔════╝██║
   ███████╗█████╗  ██╔██╗ ██║   ██║   ██║██╔██╗ ██║█████╗  ██║
   ╚════██║██╔══╝  ██║╚██╗██║   ██║   ██║██║╚██╗██║██╔══╝  ██║
   ███████║███████╗██║ ╚████║   ██║   ██║██║ ╚████║███████╗███████╗
   ╚══════╝╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚═╝╚═╝  ╚═══╝╚══════╝╚══════╝
`
	sb.WriteString(SectionStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(DimStyle.Render("                    T R A D E R   S E N T I N E L"))
	sb.WriteString("\n\n\n")
	sb.WriteString(CautionStyle.Bold(true).Render("              Cross-venue spreads, watched for you"))
	sb.WriteString("\n\n\n")
	sb.WriteString(GoodStyle.Render(fmt.Sprintf("                        Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(DimStyle.Render("                  Press any key to skip, or wait..."))
	sb.WriteString("\n")

	return sb.String()
}

// renderStartupScreen renders the loading/startup screen.
func (m Model) renderStartupScreen() string {
	var sb strings.Builder

	sb.WriteString("\n\n")
	sb.WriteString(SectionStyle.MarginBottom(1).Render("  🛰  Trader Sentinel"))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(ColorInk).Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, key := range stepOrder {
		step, ok := m.startupSteps[key]
		if !ok {
			continue
		}

		var icon, statusText string
		var style lipgloss.Style

		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", GoodStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			idx := int(time.Since(m.startupTime).Milliseconds()/200) % len(spinners)
			icon, statusText, style = spinners[idx], "Connecting...", CautionStyle
		case "failed":
			icon, statusText, style = "✗", "Failed", BadStyle
		default:
			icon, statusText, style = "○", "Pending", DimStyle
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			style.Render(icon),
			DimStyle.Render(step.Name),
			style.Render(statusText),
		))
	}

	sb.WriteString("\n")
	elapsed := time.Since(m.startupTime).Round(time.Second)
	sb.WriteString(DimStyle.Render(fmt.Sprintf("  Elapsed: %s", elapsed)))
	sb.WriteString("\n\n")
	sb.WriteString(DimStyle.Render("  Waiting for the first market snapshot..."))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.status.View()}

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪"
		}
		parts = append(parts, DimStyle.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules should start.
// This is set by main.go to signal when to begin loading modules.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
}
