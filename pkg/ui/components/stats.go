package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Stats holds scanner statistics for display.
type Stats struct {
	Ticks         int64
	Notifications int64
	TickErrors    int64
	LastTick      time.Duration
	AvgTickMs     float64
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Record folds one tick into the running statistics.
func (s *StatsComponent) Record(notifications int, duration time.Duration, failed bool) {
	s.stats.Ticks++
	s.stats.Notifications += int64(notifications)
	if failed {
		s.stats.TickErrors++
	}
	s.stats.LastTick = duration
	ms := float64(duration.Microseconds()) / 1000.0
	s.stats.AvgTickMs += (ms - s.stats.AvgTickMs) / float64(s.stats.Ticks)
}

// Stats returns a copy of the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	errorsDisplay := valueStyle.Render(fmt.Sprintf("%d", s.stats.TickErrors))
	if s.stats.TickErrors > 0 {
		errorsDisplay = errorStyle.Render(fmt.Sprintf("%d", s.stats.TickErrors))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Ticks: %s  │  Notifications: %s  │  Tick errors: %s\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Ticks)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Notifications)),
			errorsDisplay,
		) +
		fmt.Sprintf("Last tick: %s  │  Avg tick: %s",
			valueStyle.Render(s.stats.LastTick.Round(time.Millisecond).String()),
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.AvgTickMs)),
		)
}
