package ui

import "github.com/charmbracelet/lipgloss"

// Sentinel palette.
var (
	ColorAccent  = lipgloss.Color("#0EA5E9")
	ColorGood    = lipgloss.Color("#22C55E")
	ColorBad     = lipgloss.Color("#F43F5E")
	ColorCaution = lipgloss.Color("#EAB308")
	ColorDim     = lipgloss.Color("#64748B")
	ColorFrame   = lipgloss.Color("#334155")
	ColorInk     = lipgloss.Color("#F8FAFC")
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFrame).
			Padding(0, 1)

	BannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorInk).
			Background(ColorAccent).
			Padding(0, 2)

	SectionStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorDim)
	GoodStyle    = lipgloss.NewStyle().Foreground(ColorGood)
	BadStyle     = lipgloss.NewStyle().Foreground(ColorBad)
	CautionStyle = lipgloss.NewStyle().Foreground(ColorCaution)

	HelpStyle = DimStyle.Padding(0, 1)
)
