// Package tui forwards scanner output to the terminal dashboard.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/app"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/pkg/ui"
)

// Notifier sends notifications and tick reports to the dashboard.
type Notifier struct {
	send func(tea.Msg)
}

// NewNotifier sends through ui.Send.
func NewNotifier() *Notifier {
	return &Notifier{send: ui.Send}
}

// NewNotifierWithSender sends through send instead of the global program.
func NewNotifierWithSender(send func(tea.Msg)) *Notifier {
	return &Notifier{send: send}
}

func (n *Notifier) Notify(_ context.Context, note domain.Notification) error {
	n.send(ui.NotificationMsg{Notification: note})
	return nil
}

// Report is registered as a runner OnTick hook.
func (n *Notifier) Report(r app.TickReport) {
	n.send(ui.ScanMsg{
		Number:        r.Number,
		Pairs:         r.Pairs,
		Notifications: len(r.Notifications),
		Duration:      r.Duration,
		Err:           r.Err,
	})
}

// Setup announces the constructed scanner.
func (n *Notifier) Setup(cfg app.ScannerConfig, pairs []marketDomain.Pair, interval time.Duration) {
	names := make([]string, len(pairs))
	for i, p := range pairs {
		names[i] = p.String()
	}
	n.send(ui.SetupMsg{
		Market1:   cfg.Market1.String(),
		Market2:   cfg.Market2.String(),
		Pairs:     names,
		Threshold: cfg.MinProfitability.String(),
		Interval:  interval,
	})
	n.send(ui.MarketStatusMsg{Name: cfg.Market1.String(), Healthy: true})
	n.send(ui.MarketStatusMsg{Name: cfg.Market2.String(), Healthy: true})
}

// Step reports a startup step.
func (n *Notifier) Step(step, status, message string) {
	n.send(ui.StartupMsg{Step: step, Status: status, Message: message})
}
