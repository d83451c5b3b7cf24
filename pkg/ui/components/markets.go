package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// MarketsInfo describes what the scanner compares.
type MarketsInfo struct {
	Market1   string
	Market2   string
	Pairs     []string
	Threshold string
	Interval  time.Duration
}

// MarketsComponent renders the scanned markets and pair set.
type MarketsComponent struct {
	info     MarketsInfo
	maxPairs int
}

// NewMarketsComponent lists at most maxPairs pairs.
func NewMarketsComponent(maxPairs int) *MarketsComponent {
	return &MarketsComponent{maxPairs: maxPairs}
}

// Set replaces the displayed setup.
func (m *MarketsComponent) Set(info MarketsInfo) {
	m.info = info
}

// View renders the component.
func (m *MarketsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	if m.info.Market1 == "" {
		return headerStyle.Render("MARKETS") + "\n\n" + dimStyle.Render("  Waiting for scanner setup...")
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("MARKETS"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  Exchange_1: %s\n", valueStyle.Render(m.info.Market1)))
	sb.WriteString(fmt.Sprintf("  Exchange_2: %s\n", valueStyle.Render(m.info.Market2)))
	sb.WriteString(fmt.Sprintf("  Threshold:  %s\n", valueStyle.Render(m.info.Threshold)))
	sb.WriteString(fmt.Sprintf("  Interval:   %s\n", valueStyle.Render(m.info.Interval.String())))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 34)) + "\n")
	sb.WriteString(fmt.Sprintf("  Tradable pairs: %s\n", valueStyle.Render(fmt.Sprintf("%d", len(m.info.Pairs)))))

	shown := m.info.Pairs
	if len(shown) > m.maxPairs {
		shown = shown[:m.maxPairs]
	}
	for _, p := range shown {
		sb.WriteString(dimStyle.Render("    " + p))
		sb.WriteString("\n")
	}
	if rest := len(m.info.Pairs) - len(shown); rest > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("    … and %d more", rest)))
		sb.WriteString("\n")
	}
	return sb.String()
}
