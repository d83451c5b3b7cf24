// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/market/domain"
)

// Connector is an exchange market: it lists the pairs it trades and quotes
// the best bid or ask of a pair.
type Connector interface {
	// Name returns the market id the connector is registered under.
	Name() domain.MarketID

	// ListPairs returns the pairs currently tradable on the market.
	ListPairs(ctx context.Context) ([]domain.Pair, error)

	// BestPrice returns the top-of-book price on side. A pair without
	// an order book on that side fails with apperror.CodeNoLiquidity.
	BestPrice(ctx context.Context, pair domain.Pair, side domain.Side) (decimal.Decimal, error)
}

// Tracker is implemented by streaming connectors that keep a local cache
// of the pairs they were asked to track.
type Tracker interface {
	Track(ctx context.Context, pairs []domain.Pair) error
}

// Closer releases connector resources.
type Closer interface {
	Close() error
}
