package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
)

func TestNotifier_PrintsTimestampedMessage(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)

	at := time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC)
	note := domain.NewNotification("BTC-USDT", domain.DirectionBuy2Sell1, "gate_io", "binance",
		decimal.RequireFromString("0.012345"), at)

	if err := n.Notify(context.Background(), note); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	want := "[13:04:05] BTC-USDT: Buy@2 & Sell@1: 0.01234\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNotifier_Banner(t *testing.T) {
	var buf bytes.Buffer
	NewNotifier(&buf).Banner("gate_io", "binance")

	if !strings.Contains(buf.String(), "Exchange_1: gate_io; Exchange_2: binance") {
		t.Errorf("banner = %q", buf.String())
	}
}
