package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// MarketStatus is the reachability of one market as seen by the scanner.
type MarketStatus struct {
	Name       string
	Healthy    bool
	Detail     string
	LastUpdate time.Time
}

// StatusComponent renders per-market status.
type StatusComponent struct {
	markets []MarketStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{
		markets: make([]MarketStatus, 0, 2),
	}
}

// Update sets a market's status, keeping insertion order.
func (s *StatusComponent) Update(status MarketStatus) {
	for i, m := range s.markets {
		if m.Name == status.Name {
			s.markets[i] = status
			return
		}
	}
	s.markets = append(s.markets, status)
}

// Get returns the status of name.
func (s *StatusComponent) Get(name string) (MarketStatus, bool) {
	for _, m := range s.markets {
		if m.Name == name {
			return m, true
		}
	}
	return MarketStatus{}, false
}

// View renders the status component.
func (s *StatusComponent) View() string {
	if len(s.markets) == 0 {
		return "No markets"
	}

	var result string
	for _, m := range s.markets {
		status := "● up"
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
		if !m.Healthy {
			status = "○ down"
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
		}

		line := fmt.Sprintf("%s: %s", m.Name, style.Render(status))
		if m.Detail != "" {
			line += fmt.Sprintf(" (%s)", m.Detail)
		}
		if result != "" {
			result += "  │  "
		}
		result += line
	}
	return result
}
