// Package binance implements the market Connector for the Binance spot exchange.
package binance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/market/domain"
)

// REST responses

// ExchangeInfo is the subset of GET /api/v3/exchangeInfo the connector uses.
type ExchangeInfo struct {
	Symbols []SymbolInfo `json:"symbols"`
}

// SymbolInfo describes one listed symbol.
type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"` // TRADING, BREAK, HALT...
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
}

// Tradable reports whether the symbol currently accepts orders.
func (s SymbolInfo) Tradable() bool {
	return s.Status == symbolStatusTrading
}

// Pair returns the canonical pair for the symbol.
func (s SymbolInfo) Pair() domain.Pair {
	return domain.NewPair(s.BaseAsset, s.QuoteAsset)
}

// BookTickerResponse is the GET /api/v3/ticker/bookTicker response.
type BookTickerResponse struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

// ToBookTicker parses the response into a domain ticker for pair.
func (r *BookTickerResponse) ToBookTicker(pair domain.Pair, at time.Time) (domain.BookTicker, error) {
	return parseBookTicker(pair, at, r.BidPrice, r.BidQty, r.AskPrice, r.AskQty)
}

// APIError represents an error response from the Binance API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("binance API error %d: %s", e.Code, e.Message)
}

// WebSocket request/response messages

// WSRequest is a WebSocket subscription request.
type WSRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// WSResponse is a WebSocket subscription response.
type WSResponse struct {
	Result json.RawMessage `json:"result"`
	ID     int64           `json:"id"`
	Error  *APIError       `json:"error,omitempty"`
}

// StreamEvent wraps payloads on the combined /stream endpoint.
type StreamEvent struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// BookTickerEvent represents a best bid/ask update.
// Stream: <symbol>@bookTicker
type BookTickerEvent struct {
	UpdateID int64  `json:"u"` // Order book updateId
	Symbol   string `json:"s"` // Symbol
	BidPrice string `json:"b"` // Best bid price
	BidQty   string `json:"B"` // Best bid qty
	AskPrice string `json:"a"` // Best ask price
	AskQty   string `json:"A"` // Best ask qty
}

// ToBookTicker parses the event into a domain ticker for pair.
func (e *BookTickerEvent) ToBookTicker(pair domain.Pair, at time.Time) (domain.BookTicker, error) {
	return parseBookTicker(pair, at, e.BidPrice, e.BidQty, e.AskPrice, e.AskQty)
}

// BookTickerStream returns the stream name for symbol.
func BookTickerStream(symbol string) string {
	return strings.ToLower(symbol) + "@bookTicker"
}

func parseBookTicker(pair domain.Pair, at time.Time, bid, bidQty, ask, askQty string) (domain.BookTicker, error) {
	t := domain.BookTicker{Pair: pair, Timestamp: at}
	var err error
	if t.Bid, err = parseOptional(bid); err != nil {
		return t, fmt.Errorf("bid price %q: %w", bid, err)
	}
	if t.Ask, err = parseOptional(ask); err != nil {
		return t, fmt.Errorf("ask price %q: %w", ask, err)
	}
	t.BidQty, _ = parseOptional(bidQty)
	t.AskQty, _ = parseOptional(askQty)
	return t, nil
}

// parseOptional treats an empty string as zero.
func parseOptional(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
