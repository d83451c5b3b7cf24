// Package app contains the spread scanner, its runner and the ports they
// depend on.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
)

// PairLister lists the pairs a market trades. It may fail with
// apperror.CodeMarketUnavailable.
type PairLister interface {
	ListPairs(ctx context.Context, market marketDomain.MarketID) ([]marketDomain.Pair, error)
}

// PriceLookup returns the best bid or ask of a pair on a market. It fails
// with apperror.CodeNoLiquidity when that side has no order book.
type PriceLookup interface {
	GetPrice(ctx context.Context, market marketDomain.MarketID, pair marketDomain.Pair, side marketDomain.Side) (decimal.Decimal, error)
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notification) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) error {
	return f(ctx, n)
}
