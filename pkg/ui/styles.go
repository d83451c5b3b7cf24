package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by the dashboard screens.
var (
	ColorPrimary = lipgloss.Color("#7C3AED")
	ColorSuccess = lipgloss.Color("#10B981")
	ColorDanger  = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")
	ColorTick    = lipgloss.Color("#60A5FA")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorBorder  = lipgloss.Color("#374151")
	ColorText    = lipgloss.Color("#FFFFFF")
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 2)

	// SectionStyle renders panel headings such as "LIVE ACTIVITY".
	SectionStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	SuccessText = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningText = lipgloss.NewStyle().Foreground(ColorWarning)
	DangerText  = lipgloss.NewStyle().Foreground(ColorDanger)
	TickText    = lipgloss.NewStyle().Foreground(ColorTick)
	MutedValue  = lipgloss.NewStyle().Foreground(ColorMuted)

	HelpStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1)
)
