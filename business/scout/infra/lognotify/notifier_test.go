package lognotify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

func TestNotifier_WritesStructuredRecord(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, logger.LevelInfo, "scout-test", nil)

	note := domain.NewNotification("B", domain.DirectionBuy1Sell2, "X", "Y",
		decimal.RequireFromString("0.0693069"), time.Now())
	if err := NewNotifier(log).Notify(context.Background(), note); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}

	checks := map[string]string{
		"msg":         "B: Buy@1 & Sell@2: 0.06931",
		"pair":        "B",
		"direction":   "BUY1_SELL2",
		"buy_market":  "X",
		"sell_market": "Y",
		"ratio":       "0.06931",
		"id":          note.ID,
	}
	for key, want := range checks {
		if got, _ := rec[key].(string); got != want {
			t.Errorf("%s = %v, want %q", key, rec[key], want)
		}
	}
}
