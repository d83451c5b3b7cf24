package domain

import (
	"github.com/shopspring/decimal"
)

// RatioPlaces is the number of decimals a ratio is rendered with.
const RatioPlaces = 5

// Quote holds the four top-of-book prices of one pair for one tick.
type Quote struct {
	Bid1 decimal.Decimal
	Ask1 decimal.Decimal
	Bid2 decimal.Decimal
	Ask2 decimal.Decimal
}

// Profitability returns bid/ask - 1, the gross return of buying at ask
// and selling at bid. ok is false when ask is not positive.
func Profitability(bid, ask decimal.Decimal) (ratio decimal.Decimal, ok bool) {
	if !ask.IsPositive() {
		return decimal.Zero, false
	}
	return bid.Div(ask).Sub(decimal.NewFromInt(1)), true
}

// Ratio returns the profitability of d for this quote.
func (q Quote) Ratio(d Direction) (decimal.Decimal, bool) {
	if d == DirectionBuy2Sell1 {
		return Profitability(q.Bid1, q.Ask2)
	}
	return Profitability(q.Bid2, q.Ask1)
}

// FormatRatio renders r with RatioPlaces decimals, rounding half to even.
func FormatRatio(r decimal.Decimal) string {
	return r.StringFixedBank(RatioPlaces)
}
