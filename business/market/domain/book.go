package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookTicker is the best bid and ask of a pair at a point in time.
type BookTicker struct {
	Pair      Pair
	Bid       decimal.Decimal
	BidQty    decimal.Decimal
	Ask       decimal.Decimal
	AskQty    decimal.Decimal
	Timestamp time.Time
}

// Price returns the price on side.
func (b BookTicker) Price(side Side) decimal.Decimal {
	if side.IsAsk() {
		return b.Ask
	}
	return b.Bid
}

// HasSide reports whether side carries a usable (positive) price.
func (b BookTicker) HasSide(side Side) bool {
	return b.Price(side).IsPositive()
}

// Age returns how long ago the ticker was observed.
func (b BookTicker) Age(now time.Time) time.Duration {
	return now.Sub(b.Timestamp)
}
