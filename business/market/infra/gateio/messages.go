// Package gateio implements the market Connector for the Gate.io spot exchange.
package gateio

import (
	"fmt"
	"strings"

	"github.com/fd1az/arbitrage-scout/business/market/domain"
)

// CurrencyPair is one entry of GET /api/v4/spot/currency_pairs.
type CurrencyPair struct {
	ID          string `json:"id"` // BTC_USDT
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	TradeStatus string `json:"trade_status"` // untradable, buyable, sellable, tradable
}

// Tradable reports whether both buying and selling are open.
func (p CurrencyPair) Tradable() bool {
	return p.TradeStatus == tradeStatusTradable
}

// Pair returns the canonical pair.
func (p CurrencyPair) Pair() domain.Pair {
	if p.Base != "" && p.Quote != "" {
		return domain.NewPair(p.Base, p.Quote)
	}
	return domain.ParsePair(p.ID)
}

// Ticker is one entry of GET /api/v4/spot/tickers. Gate.io leaves
// highest_bid or lowest_ask empty when that side of the book is empty.
type Ticker struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
	LowestAsk    string `json:"lowest_ask"`
	HighestBid   string `json:"highest_bid"`
	BaseVolume   string `json:"base_volume"`
	QuoteVolume  string `json:"quote_volume"`
}

// APIError is the Gate.io v4 error body.
type APIError struct {
	Label   string `json:"label"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gate.io API error %s: %s", e.Label, e.Message)
}

// currencyPairID converts BTC-USDT to BTC_USDT.
func currencyPairID(p domain.Pair) string {
	return strings.ToUpper(p.Symbol("_"))
}
