package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

func testNotification() domain.Notification {
	return domain.NewNotification("BTC-USDT", domain.DirectionBuy2Sell1, "gate_io", "binance",
		decimal.RequireFromString("0.0123456"), time.UnixMilli(1700000000123))
}

func TestNotifier_XAddThenPublish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := NewWithClient(db, Config{Stream: "s", Channel: "c", MaxLen: 1000})

	note := testNotification()
	ev := NewEvent(note)
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectXAdd(n.xaddArgs(ev)).SetVal("1700000000123-0")
	mock.ExpectPublish("c", payload).SetVal(1)

	if err := n.Notify(context.Background(), note); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("redis expectations: %v", err)
	}
}

func TestNotifier_XAddFailureSkipsPublish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := NewWithClient(db, Config{})

	note := testNotification()
	mock.ExpectXAdd(n.xaddArgs(NewEvent(note))).SetErr(errors.New("READONLY"))

	err := n.Notify(context.Background(), note)
	if !apperror.HasCode(err, apperror.CodeNotificationFailed) {
		t.Fatalf("err = %v, want NOTIFICATION_FAILED", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("redis expectations: %v", err)
	}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(testNotification())

	if ev.Ratio != "0.01235" {
		t.Errorf("ratio = %s", ev.Ratio)
	}
	if ev.BuyMarket != "binance" || ev.SellMarket != "gate_io" {
		t.Errorf("buy/sell = %s/%s", ev.BuyMarket, ev.SellMarket)
	}
	if ev.Message != "BTC-USDT: Buy@2 & Sell@1: 0.01235" {
		t.Errorf("message = %q", ev.Message)
	}
	if ev.TsMs != 1700000000123 {
		t.Errorf("ts = %d", ev.TsMs)
	}
}

func TestNewWithClient_Defaults(t *testing.T) {
	db, _ := redismock.NewClientMock()
	n := NewWithClient(db, Config{})

	if n.stream != DefaultStream || n.channel != DefaultChannel {
		t.Errorf("stream/channel = %s/%s", n.stream, n.channel)
	}
	if args := n.xaddArgs(NewEvent(testNotification())); args.MaxLen != 0 || args.Approx {
		t.Errorf("unbounded stream got MaxLen=%d Approx=%v", args.MaxLen, args.Approx)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
