package binance

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/ratelimit"
	"github.com/fd1az/arbitrage-scout/internal/wsconn"
)

const (
	tracerName = "binance"
	meterName  = "binance"

	// Binance WebSocket endpoints
	BaseWSURL   = "wss://stream.binance.com:9443/ws"
	BaseWSURLUS = "wss://stream.binance.us:9443/ws"

	// Binance accepts 5 incoming messages per second and at most 1024
	// streams per connection.
	maxStreamsPerRequest  = 200
	maxStreams            = 1024
	controlMessagesPerSec = 5
)

// ClientConfig holds configuration for the Binance stream client.
type ClientConfig struct {
	URL          string        // WebSocket URL, /ws or /stream
	ReadTimeout  time.Duration // Read timeout
	WriteTimeout time.Duration // Write timeout
}

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	messagesReceived metric.Int64Counter
	tickerUpdates    metric.Int64Counter
	subscriptions    metric.Int64UpDownCounter
	parseErrors      metric.Int64Counter
}

// Client is a Binance WebSocket stream client.
type Client struct {
	config ClientConfig
	logger logger.LoggerInterface

	conn    *wsconn.Client
	limiter *ratelimit.Limiter

	onBookTicker func(*BookTickerEvent)
	handlersMu   sync.RWMutex

	subscriptions map[string]struct{}
	subsMu        sync.RWMutex
	nextID        atomic.Int64

	tracer  trace.Tracer
	metrics *clientMetrics
}

// NewClient creates a new Binance stream client. No connection is opened
// until Connect.
func NewClient(cfg ClientConfig, log logger.LoggerInterface) (*Client, error) {
	wsURL := cfg.URL
	if wsURL == "" {
		wsURL = BaseWSURL
	}

	wsCfg := wsconn.DefaultConfig(wsURL, "binance")
	if cfg.ReadTimeout > 0 {
		wsCfg.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		wsCfg.WriteTimeout = cfg.WriteTimeout
	}

	conn, err := wsconn.New(wsCfg)
	if err != nil {
		return nil, err
	}

	c := &Client{
		config:        cfg,
		logger:        log,
		conn:          conn,
		limiter:       ratelimit.NewWithBurst("binance-ws", controlMessagesPerSec, controlMessagesPerSec),
		subscriptions: make(map[string]struct{}),
		tracer:        otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, err
	}

	conn.OnMessage(c.handleMessage)
	conn.OnReconnect(c.resubscribe)
	conn.OnStateChange(func(state wsconn.State, err error) {
		if err != nil {
			log.Warn(context.Background(), "binance stream state changed", "state", state, "error", err)
			return
		}
		log.Debug(context.Background(), "binance stream state changed", "state", state)
	})

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.messagesReceived, err = meter.Int64Counter(
		"binance_messages_total",
		metric.WithDescription("Total messages received"),
	)
	if err != nil {
		return err
	}

	c.metrics.tickerUpdates, err = meter.Int64Counter(
		"binance_book_ticker_updates_total",
		metric.WithDescription("Total book ticker updates received"),
	)
	if err != nil {
		return err
	}

	c.metrics.subscriptions, err = meter.Int64UpDownCounter(
		"binance_subscriptions",
		metric.WithDescription("Active subscriptions"),
	)
	if err != nil {
		return err
	}

	c.metrics.parseErrors, err = meter.Int64Counter(
		"binance_parse_errors_total",
		metric.WithDescription("Message parse errors"),
	)
	return err
}

// OnBookTicker registers a handler for book ticker events.
func (c *Client) OnBookTicker(handler func(*BookTickerEvent)) {
	c.handlersMu.Lock()
	c.onBookTicker = handler
	c.handlersMu.Unlock()
}

// Connect opens the connection if it is not already open.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn.IsConnected() {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "binance.connect")
	defer span.End()

	if err := c.conn.Connect(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	c.logger.Info(ctx, "binance stream connected", "url", c.config.URL)
	return nil
}

// IsConnected reports whether the stream is live.
func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}

// Subscribe adds book ticker subscriptions for symbols not yet subscribed.
func (c *Client) Subscribe(ctx context.Context, symbols ...string) error {
	c.subsMu.RLock()
	streams := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		s := BookTickerStream(sym)
		if _, ok := c.subscriptions[s]; !ok {
			streams = append(streams, s)
		}
	}
	total := len(c.subscriptions) + len(streams)
	c.subsMu.RUnlock()

	if len(streams) == 0 {
		return nil
	}
	if total > maxStreams {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("binance stream"),
			apperror.WithMessage("too many streams for one connection"))
	}

	ctx, span := c.tracer.Start(ctx, "binance.subscribe",
		trace.WithAttributes(attribute.Int("streams", len(streams))),
	)
	defer span.End()

	if err := c.send(ctx, "SUBSCRIBE", streams); err != nil {
		span.RecordError(err)
		return err
	}

	c.subsMu.Lock()
	for _, s := range streams {
		c.subscriptions[s] = struct{}{}
	}
	c.subsMu.Unlock()

	c.metrics.subscriptions.Add(ctx, int64(len(streams)))
	return nil
}

// Subscriptions returns the subscribed streams, sorted.
func (c *Client) Subscriptions() []string {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	out := make([]string, 0, len(c.subscriptions))
	for s := range c.subscriptions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// resubscribe restores every subscription after a reconnect.
func (c *Client) resubscribe(ctx context.Context) error {
	streams := c.Subscriptions()
	if len(streams) == 0 {
		return nil
	}
	c.logger.Info(ctx, "binance stream reconnected, resubscribing", "streams", len(streams))
	return c.send(ctx, "SUBSCRIBE", streams)
}

// send writes method requests in batches, paced to the control message limit.
func (c *Client) send(ctx context.Context, method string, streams []string) error {
	for start := 0; start < len(streams); start += maxStreamsPerRequest {
		end := min(start+maxStreamsPerRequest, len(streams))

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req := WSRequest{
			Method: method,
			Params: streams[start:end],
			ID:     c.nextID.Add(1),
		}
		if err := c.conn.SendJSON(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// handleMessage accepts both raw /ws payloads and combined /stream envelopes.
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	c.metrics.messagesReceived.Add(ctx, 1)

	var event StreamEvent
	if err := json.Unmarshal(data, &event); err == nil && event.Stream != "" {
		if strings.HasSuffix(event.Stream, "@bookTicker") {
			c.dispatchBookTicker(ctx, event.Data)
		}
		return
	}

	var resp WSResponse
	if err := json.Unmarshal(data, &resp); err == nil && resp.ID != 0 {
		if resp.Error != nil {
			c.logger.Warn(ctx, "binance subscription rejected", "id", resp.ID, "error", resp.Error)
			return
		}
		c.logger.Debug(ctx, "subscription response received", "id", resp.ID)
		return
	}

	c.dispatchBookTicker(ctx, data)
}

func (c *Client) dispatchBookTicker(ctx context.Context, data []byte) {
	var ticker BookTickerEvent
	if err := json.Unmarshal(data, &ticker); err != nil || ticker.Symbol == "" {
		c.metrics.parseErrors.Add(ctx, 1)
		c.logger.Debug(ctx, "failed to parse message", "error", err, "data", string(data[:min(len(data), 200)]))
		return
	}
	c.metrics.tickerUpdates.Add(ctx, 1)

	c.handlersMu.RLock()
	handler := c.onBookTicker
	c.handlersMu.RUnlock()
	if handler != nil {
		handler(&ticker)
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
