// Package paper implements an in-memory market with static quotes, for
// offline runs and tests.
package paper

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/market/app"
	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/config"
)

var _ app.Connector = (*Connector)(nil)

// Quote is a static top of book.
type Quote struct {
	Bid decimal.Decimal
	Ask decimal.Decimal
}

// Connector is a market whose book is whatever was configured or set.
type Connector struct {
	name domain.MarketID

	mu    sync.RWMutex
	book  map[domain.Pair]Quote
	order []domain.Pair
}

// NewConnector creates an empty paper market.
func NewConnector(name domain.MarketID) *Connector {
	return &Connector{
		name: name,
		book: make(map[domain.Pair]Quote),
	}
}

// FromConfig builds a paper market from configured quotes. Pairs are
// listed in sorted order since config maps carry no order.
func FromConfig(name domain.MarketID, quotes map[string]config.PaperQuote) (*Connector, error) {
	c := NewConnector(name)

	keys := make([]string, 0, len(quotes))
	for k := range quotes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		q := quotes[k]
		bid, err := parseQuote(q.Bid)
		if err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("paper "+name.String()+" "+k+" bid"),
				apperror.WithCause(err))
		}
		ask, err := parseQuote(q.Ask)
		if err != nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("paper "+name.String()+" "+k+" ask"),
				apperror.WithCause(err))
		}
		c.SetQuote(domain.ParsePair(k), bid, ask)
	}
	return c, nil
}

func parseQuote(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// SetQuote lists pair (if new) and sets its top of book. A zero price
// leaves that side empty.
func (c *Connector) SetQuote(pair domain.Pair, bid, ask decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.book[pair]; !ok {
		c.order = append(c.order, pair)
	}
	c.book[pair] = Quote{Bid: bid, Ask: ask}
}

// Name returns the market id.
func (c *Connector) Name() domain.MarketID {
	return c.name
}

// ListPairs returns the listed pairs in insertion order.
func (c *Connector) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Pair, len(c.order))
	copy(out, c.order)
	return out, nil
}

// BestPrice returns the stored price. Unknown pairs and empty sides are
// NoLiquidity.
func (c *Connector) BestPrice(ctx context.Context, pair domain.Pair, side domain.Side) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	c.mu.RLock()
	q, ok := c.book[pair]
	c.mu.RUnlock()

	price := q.Bid
	if side.IsAsk() {
		price = q.Ask
	}
	if !ok || !price.IsPositive() {
		return decimal.Zero, apperror.NoLiquidity(c.name.String()+" "+pair.String()+" "+string(side), nil)
	}
	return price, nil
}
