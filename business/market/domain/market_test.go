package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		in   string
		want Pair
	}{
		{"btc_usdt", "BTC-USDT"},
		{"BTC/USDT", "BTC-USDT"},
		{" eth-btc ", "ETH-BTC"},
		{"BTCUSDT", "BTCUSDT"},
	}
	for _, tt := range tests {
		if got := ParsePair(tt.in); got != tt.want {
			t.Errorf("ParsePair(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPair_Parts(t *testing.T) {
	p := NewPair("eth", "usdt")

	if p != "ETH-USDT" {
		t.Fatalf("NewPair = %q", p)
	}
	if p.Base() != "ETH" || p.Quote() != "USDT" {
		t.Errorf("Base/Quote = %q/%q", p.Base(), p.Quote())
	}
	if p.Symbol("") != "ETHUSDT" || p.Symbol("_") != "ETH_USDT" {
		t.Errorf("Symbol = %q / %q", p.Symbol(""), p.Symbol("_"))
	}
	if !p.Valid() {
		t.Error("expected valid pair")
	}
	if Pair("ETHUSDT").Valid() || Pair("-USDT").Valid() {
		t.Error("expected invalid pairs")
	}
}

func TestBookTicker_Price(t *testing.T) {
	b := BookTicker{
		Pair:      "BTC-USDT",
		Bid:       decimal.RequireFromString("100"),
		Ask:       decimal.Zero,
		Timestamp: time.Now().Add(-2 * time.Second),
	}

	if !b.Price(SideBid).Equal(decimal.NewFromInt(100)) {
		t.Errorf("bid = %s", b.Price(SideBid))
	}
	if !b.HasSide(SideBid) {
		t.Error("expected bid side")
	}
	if b.HasSide(SideAsk) {
		t.Error("zero ask must not count as a usable side")
	}
	if b.Age(time.Now()) < 2*time.Second {
		t.Errorf("age = %s", b.Age(time.Now()))
	}
}
