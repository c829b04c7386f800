package components

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ConnectionStatus is the last known state of one upstream.
type ConnectionStatus struct {
	Name       string
	Connected  bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders upstream connections on one line, in the order
// they were first reported.
type StatusComponent struct {
	connections []ConnectionStatus
}

func NewStatusComponent() *StatusComponent {
	return &StatusComponent{}
}

func (s *StatusComponent) Update(status ConnectionStatus) {
	i := slices.IndexFunc(s.connections, func(c ConnectionStatus) bool { return c.Name == status.Name })
	if i < 0 {
		s.connections = append(s.connections, status)
		return
	}
	s.connections[i] = status
}

func (s *StatusComponent) Get(name string) (ConnectionStatus, bool) {
	i := slices.IndexFunc(s.connections, func(c ConnectionStatus) bool { return c.Name == name })
	if i < 0 {
		return ConnectionStatus{}, false
	}
	return s.connections[i], true
}

var (
	upStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true)
	downStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E")).Bold(true)
)

func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return "No connections"
	}

	parts := make([]string, len(s.connections))
	for i, c := range s.connections {
		switch {
		case !c.Connected:
			parts[i] = downStyle.Render("○ " + c.Name + " (disconnected)")
		case c.Latency > 0:
			parts[i] = upStyle.Render(fmt.Sprintf("● %s (%dms)", c.Name, c.Latency.Milliseconds()))
		default:
			parts[i] = upStyle.Render("● " + c.Name)
		}
	}
	return strings.Join(parts, "  │  ")
}
