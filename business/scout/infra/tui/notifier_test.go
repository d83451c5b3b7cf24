package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/app"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/pkg/ui"
)

func TestNotifier_ForwardsMessages(t *testing.T) {
	var sent []tea.Msg
	n := NewNotifierWithSender(func(m tea.Msg) { sent = append(sent, m) })

	note := domain.NewNotification("B", domain.DirectionBuy1Sell2, "X", "Y", decimal.NewFromFloat(0.07), time.Now())
	if err := n.Notify(context.Background(), note); err != nil {
		t.Fatal(err)
	}
	n.Report(app.TickReport{Number: 4, Pairs: 2, Notifications: []domain.Notification{note}, Err: errors.New("x")})
	n.Setup(app.ScannerConfig{Market1: "X", Market2: "Y", MinProfitability: decimal.RequireFromString("0.007")},
		[]marketDomain.Pair{"B"}, time.Second)

	if len(sent) != 5 {
		t.Fatalf("sent %d messages, want 5", len(sent))
	}
	if got, ok := sent[0].(ui.NotificationMsg); !ok || got.Notification.ID != note.ID {
		t.Errorf("first message = %#v", sent[0])
	}
	scan, ok := sent[1].(ui.ScanMsg)
	if !ok || scan.Number != 4 || scan.Notifications != 1 || scan.Err == nil {
		t.Errorf("scan message = %#v", sent[1])
	}
	setup, ok := sent[2].(ui.SetupMsg)
	if !ok || setup.Market1 != "X" || setup.Threshold != "0.007" || len(setup.Pairs) != 1 || setup.Interval != time.Second {
		t.Errorf("setup message = %#v", sent[2])
	}
}
