// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NotificationRow is one line of the notifications table.
type NotificationRow struct {
	Time       string
	Pair       string
	Direction  string
	BuyMarket  string
	SellMarket string
	Ratio      string
}

// NotificationsComponent renders the most recent notifications, newest
// first.
type NotificationsComponent struct {
	rows    []NotificationRow
	maxRows int
	visible int
	offset  int
}

// NewNotificationsComponent keeps up to maxRows rows and shows visible of
// them at a time.
func NewNotificationsComponent(maxRows, visible int) *NotificationsComponent {
	return &NotificationsComponent{
		rows:    make([]NotificationRow, 0, maxRows),
		maxRows: maxRows,
		visible: visible,
	}
}

// Add prepends row.
func (n *NotificationsComponent) Add(row NotificationRow) {
	n.rows = append([]NotificationRow{row}, n.rows...)
	if len(n.rows) > n.maxRows {
		n.rows = n.rows[:n.maxRows]
	}
	if n.offset > 0 {
		n.offset = min(n.offset+1, n.maxOffset())
	}
}

// Len returns the number of stored rows.
func (n *NotificationsComponent) Len() int { return len(n.rows) }

// Clear drops every row.
func (n *NotificationsComponent) Clear() {
	n.rows = n.rows[:0]
	n.offset = 0
}

func (n *NotificationsComponent) ScrollUp() {
	if n.offset > 0 {
		n.offset--
	}
}

func (n *NotificationsComponent) ScrollDown() {
	n.offset = min(n.offset+1, n.maxOffset())
}

func (n *NotificationsComponent) maxOffset() int {
	return max(0, len(n.rows)-n.visible)
}

// View renders the table.
func (n *NotificationsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	ratioStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("NOTIFICATIONS (%d)", len(n.rows))))
	sb.WriteString("\n\n")

	if len(n.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No spread above threshold yet..."))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-8s  %-14s  %-16s  %-22s  %9s\n", "Time", "Pair", "Direction", "Buy → Sell", "Ratio"))
	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 77)) + "\n")

	end := min(n.offset+n.visible, len(n.rows))
	for _, row := range n.rows[n.offset:end] {
		sb.WriteString(fmt.Sprintf("  %-8s  %-14s  %-16s  %-22s  %s\n",
			row.Time,
			row.Pair,
			row.Direction,
			row.BuyMarket+" → "+row.SellMarket,
			ratioStyle.Render(fmt.Sprintf("%9s", row.Ratio)),
		))
	}
	if len(n.rows) > n.visible {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  showing %d-%d of %d", n.offset+1, end, len(n.rows))))
	}
	return sb.String()
}
