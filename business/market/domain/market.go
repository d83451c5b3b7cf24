// Package domain contains the core domain types for the market context.
package domain

import (
	"strings"
)

// MarketID identifies a market (an exchange connector), e.g. "binance".
type MarketID string

func (m MarketID) String() string { return string(m) }

// Side selects which side of the top of book to read.
type Side string

const (
	SideBid Side = "bid" // highest buy order
	SideAsk Side = "ask" // lowest sell order
)

// IsAsk reports whether s is the ask side.
func (s Side) IsAsk() bool { return s == SideAsk }

// Pair is a trading pair in canonical BASE-QUOTE form, e.g. "BTC-USDT".
// Connectors translate to and from their own symbol formats.
type Pair string

// NewPair builds a canonical pair from base and quote assets.
func NewPair(base, quote string) Pair {
	return Pair(strings.ToUpper(strings.TrimSpace(base)) + "-" + strings.ToUpper(strings.TrimSpace(quote)))
}

// ParsePair normalises "btc_usdt", "BTC/USDT" and "btc-usdt" to "BTC-USDT".
// Strings without a separator are returned upper-cased and unsplit.
func ParsePair(s string) Pair {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", "/", "-").Replace(s)
	return Pair(s)
}

func (p Pair) String() string { return string(p) }

// Base returns the base asset, or the whole pair if it has no separator.
func (p Pair) Base() string {
	base, _, _ := strings.Cut(string(p), "-")
	return base
}

// Quote returns the quote asset, or "" if the pair has no separator.
func (p Pair) Quote() string {
	_, quote, _ := strings.Cut(string(p), "-")
	return quote
}

// Symbol joins base and quote with sep, e.g. Symbol("") = "BTCUSDT",
// Symbol("_") = "BTC_USDT".
func (p Pair) Symbol(sep string) string {
	return p.Base() + sep + p.Quote()
}

// Valid reports whether the pair has a non-empty base and quote.
func (p Pair) Valid() bool {
	base, quote, ok := strings.Cut(string(p), "-")
	return ok && base != "" && quote != ""
}
