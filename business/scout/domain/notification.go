package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
)

// Notification reports a ratio above the threshold for one pair and
// direction.
type Notification struct {
	ID         string
	Pair       marketDomain.Pair
	Direction  Direction
	BuyMarket  marketDomain.MarketID
	SellMarket marketDomain.MarketID
	Ratio      decimal.Decimal
	Timestamp  time.Time
}

// NewNotification builds a notification for d between market1 and market2.
func NewNotification(pair marketDomain.Pair, d Direction, market1, market2 marketDomain.MarketID, ratio decimal.Decimal, at time.Time) Notification {
	buy, sell := market1, market2
	if d == DirectionBuy2Sell1 {
		buy, sell = market2, market1
	}
	return Notification{
		ID:         uuid.NewString(),
		Pair:       pair,
		Direction:  d,
		BuyMarket:  buy,
		SellMarket: sell,
		Ratio:      ratio,
		Timestamp:  at,
	}
}

// Message renders "<pair>: Buy@1 & Sell@2: 0.06931".
func (n Notification) Message() string {
	return fmt.Sprintf("%s: %s: %s", n.Pair, n.Direction.Label(), FormatRatio(n.Ratio))
}

// Header renders the per-tick header naming both markets.
func Header(market1, market2 marketDomain.MarketID) string {
	return fmt.Sprintf("Exchange_1: %s; Exchange_2: %s", market1, market2)
}
