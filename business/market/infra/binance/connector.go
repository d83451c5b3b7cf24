package binance

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scout/business/market/app"
	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

var (
	_ app.Connector = (*Connector)(nil)
	_ app.Tracker   = (*Connector)(nil)
	_ app.Closer    = (*Connector)(nil)
)

// ConnectorConfig holds configuration for the Binance connector.
type ConnectorConfig struct {
	Name              domain.MarketID
	RestURL           string
	WebSocketURL      string
	UseWebSocket      bool          // keep a streamed top-of-book cache for tracked pairs
	StaleTimeout      time.Duration // cache entries older than this fall back to REST
	RequestTimeout    time.Duration
	RequestsPerMinute int
	QuoteAssets       []string // restrict listed pairs to these quotes; empty = all
}

// tickerState is the cached top of book for one symbol.
type tickerState struct {
	mu     sync.RWMutex
	ticker domain.BookTicker
}

// Connector implements app.Connector for Binance spot.
type Connector struct {
	config     ConnectorConfig
	logger     logger.LoggerInterface
	httpClient *HTTPClient
	stream     *Client // nil when streaming is disabled

	// Cached tickers keyed by exchange symbol (BTCUSDT)
	tickers   map[string]*tickerState
	tickersMu sync.RWMutex

	quotes map[string]struct{}
	tracer trace.Tracer
}

// NewConnector creates a Binance connector.
func NewConnector(cfg ConnectorConfig, log logger.LoggerInterface) (*Connector, error) {
	if cfg.Name == "" {
		cfg.Name = "binance"
	}
	if cfg.StaleTimeout == 0 {
		cfg.StaleTimeout = 5 * time.Second
	}

	httpClient, err := NewHTTPClient(HTTPClientConfig{
		BaseURL:           cfg.RestURL,
		Timeout:           cfg.RequestTimeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
	}, log)
	if err != nil {
		return nil, err
	}

	c := &Connector{
		config:     cfg,
		logger:     log,
		httpClient: httpClient,
		tickers:    make(map[string]*tickerState),
		quotes:     make(map[string]struct{}, len(cfg.QuoteAssets)),
		tracer:     otel.Tracer(tracerName),
	}
	for _, q := range cfg.QuoteAssets {
		c.quotes[strings.ToUpper(strings.TrimSpace(q))] = struct{}{}
	}

	if cfg.UseWebSocket {
		c.stream, err = NewClient(ClientConfig{URL: cfg.WebSocketURL}, log)
		if err != nil {
			return nil, err
		}
		c.stream.OnBookTicker(c.handleBookTicker)
	}

	return c, nil
}

// Name returns the market id.
func (c *Connector) Name() domain.MarketID {
	return c.config.Name
}

// ListPairs returns the symbols in TRADING status as canonical pairs.
func (c *Connector) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	ctx, span := c.tracer.Start(ctx, "binance.list_pairs")
	defer span.End()

	info, err := c.httpClient.GetExchangeInfo(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeMarketUnavailable,
			apperror.WithContext(c.config.Name.String()),
			apperror.WithCause(err))
	}

	pairs := make([]domain.Pair, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if !s.Tradable() || !c.quoteAllowed(s.QuoteAsset) {
			continue
		}
		pairs = append(pairs, s.Pair())
	}

	span.SetAttributes(attribute.Int("pairs", len(pairs)))
	c.logger.Debug(ctx, "binance pairs listed", "symbols", len(info.Symbols), "tradable", len(pairs))
	return pairs, nil
}

func (c *Connector) quoteAllowed(quote string) bool {
	if len(c.quotes) == 0 {
		return true
	}
	_, ok := c.quotes[strings.ToUpper(quote)]
	return ok
}

// BestPrice returns the best bid or ask of pair. Fresh streamed data is
// served from the cache; anything else goes to REST. The cache is only
// written by the stream.
func (c *Connector) BestPrice(ctx context.Context, pair domain.Pair, side domain.Side) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "binance.best_price",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("side", string(side)),
		),
	)
	defer span.End()

	ticker, source, err := c.bookTicker(ctx, pair)
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, err
	}
	span.SetAttributes(attribute.String("source", source))

	if !ticker.HasSide(side) {
		return decimal.Zero, apperror.NoLiquidity(
			c.config.Name.String()+" "+pair.String()+" "+string(side), nil)
	}
	return ticker.Price(side), nil
}

func (c *Connector) bookTicker(ctx context.Context, pair domain.Pair) (domain.BookTicker, string, error) {
	symbol := pair.Symbol("")

	c.tickersMu.RLock()
	state, tracked := c.tickers[symbol]
	c.tickersMu.RUnlock()

	if tracked && c.stream != nil && c.stream.IsConnected() {
		state.mu.RLock()
		ticker := state.ticker
		state.mu.RUnlock()
		if !ticker.Timestamp.IsZero() && ticker.Age(time.Now()) <= c.config.StaleTimeout {
			return ticker, "websocket", nil
		}
		c.logger.Debug(ctx, "book ticker stale, using HTTP fallback", "symbol", symbol)
	}

	resp, err := c.httpClient.GetBookTicker(ctx, symbol)
	if err != nil {
		return domain.BookTicker{}, "", err
	}
	ticker, err := resp.ToBookTicker(pair, time.Now())
	if err != nil {
		return domain.BookTicker{}, "", apperror.New(apperror.CodeInvalidTicker,
			apperror.WithContext("binance "+symbol),
			apperror.WithCause(err))
	}
	return ticker, "http_fallback", nil
}

// Track subscribes pairs to the book ticker stream. Without streaming it
// is a no-op.
func (c *Connector) Track(ctx context.Context, pairs []domain.Pair) error {
	if c.stream == nil || len(pairs) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(pairs))
	c.tickersMu.Lock()
	for _, p := range pairs {
		sym := p.Symbol("")
		if _, ok := c.tickers[sym]; !ok {
			c.tickers[sym] = &tickerState{ticker: domain.BookTicker{Pair: p}}
		}
		symbols = append(symbols, sym)
	}
	c.tickersMu.Unlock()

	if err := c.stream.Connect(ctx); err != nil {
		c.logger.Warn(ctx, "binance stream unavailable, prices will use REST", "error", err)
		return nil
	}
	return c.stream.Subscribe(ctx, symbols...)
}

// handleBookTicker processes book ticker updates (best bid/ask).
func (c *Connector) handleBookTicker(event *BookTickerEvent) {
	c.tickersMu.RLock()
	state, ok := c.tickers[event.Symbol]
	c.tickersMu.RUnlock()
	if !ok {
		return
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	ticker, err := event.ToBookTicker(state.ticker.Pair, time.Now())
	if err != nil {
		c.logger.Debug(context.Background(), "failed to parse book ticker", "symbol", event.Symbol, "error", err)
		return
	}
	state.ticker = ticker
}

// Close closes the stream, if any.
func (c *Connector) Close() error {
	if c.stream == nil {
		return nil
	}
	return c.stream.Close()
}
