// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	StateClosed       State = "closed"
)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // used in error context
	Header         http.Header
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	AutoReconnect  bool
	PingInterval   time.Duration // 0 disables pings
	PongTimeout    time.Duration
	ReadTimeout    time.Duration // 0 = no per-read deadline
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0,
		AutoReconnect:  true,
		PingInterval:   30 * time.Second,
		PongTimeout:    10 * time.Second,
		WriteTimeout:   5 * time.Second,
		MaxMessageSize: 1 << 20,
	}
}

// MessageHandler receives every data frame read from the connection.
type MessageHandler func(ctx context.Context, msg []byte)

// StateHandler is notified on every state transition. err carries the
// cause of a disconnect, if any.
type StateHandler func(state State, err error)

// ReconnectHandler runs after a successful reconnect, typically to
// restore subscriptions.
type ReconnectHandler func(ctx context.Context) error

// Client is a WebSocket client that keeps a single connection alive.
type Client struct {
	cfg Config

	mu          sync.RWMutex
	conn        *websocket.Conn
	state       State
	onMessage   MessageHandler
	onState     StateHandler
	onReconnect ReconnectHandler

	reconnects atomic.Int64
	closed     atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new WebSocket client. The connection is not opened until
// Connect is called.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("websocket url "+cfg.URL),
			apperror.WithCause(err))
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		cfg:    cfg,
		state:  StateDisconnected,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// OnMessage sets the handler for incoming messages.
func (c *Client) OnMessage(h MessageHandler) {
	c.mu.Lock()
	c.onMessage = h
	c.mu.Unlock()
}

// OnStateChange sets the state transition handler.
func (c *Client) OnStateChange(h StateHandler) {
	c.mu.Lock()
	c.onState = h
	c.mu.Unlock()
}

// OnReconnect sets the handler run after each successful reconnect.
func (c *Client) OnReconnect(h ReconnectHandler) {
	c.mu.Lock()
	c.onReconnect = h
	c.mu.Unlock()
}

// Connect dials the server once. A failed initial dial leaves the client
// disconnected; drops after a successful dial are retried in the
// background when AutoReconnect is set.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name))
	}

	c.setState(StateConnecting, nil)
	if err := c.dial(ctx); err != nil {
		c.setState(StateDisconnected, err)
		return err
	}
	return nil
}

// ConnectWithRetry dials until it succeeds, ctx is done, or MaxReconnects
// attempts have failed.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}
		if c.cfg.MaxReconnects > 0 && attempt >= c.cfg.MaxReconnects {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.ctx.Done():
			return apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name))
		case <-time.After(backoff):
		}
		backoff = nextBackoff(backoff, c.cfg.MaxBackoff)
	}
}

func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.cfg.URL, &websocket.DialOptions{
		HTTPHeader: c.cfg.Header,
	})
	if err != nil {
		return apperror.New(apperror.CodeWebSocketConnectionError,
			apperror.WithContext(c.cfg.Name),
			apperror.WithCause(err))
	}
	if c.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(c.cfg.MaxMessageSize)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected, nil)

	connCtx, connCancel := context.WithCancel(c.ctx)

	c.wg.Add(1)
	go c.readLoop(connCtx, connCancel, conn)

	if c.cfg.PingInterval > 0 {
		c.wg.Add(1)
		go c.pingLoop(connCtx, conn)
	}

	return nil
}

func (c *Client) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer c.wg.Done()
	defer cancel()

	for {
		readCtx := ctx
		var readCancel context.CancelFunc = func() {}
		if c.cfg.ReadTimeout > 0 {
			readCtx, readCancel = context.WithTimeout(ctx, c.cfg.ReadTimeout)
		}
		_, data, err := conn.Read(readCtx)
		readCancel()

		if err != nil {
			conn.CloseNow()
			c.handleDisconnect(conn, err)
			return
		}

		c.mu.RLock()
		handler := c.onMessage
		c.mu.RUnlock()
		if handler != nil {
			handler(c.ctx, data)
		}
	}
}

func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, c.cfg.PongTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				// The read loop observes the close and handles reconnection.
				conn.CloseNow()
				return
			}
		}
	}
}

func (c *Client) handleDisconnect(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()

	if c.closed.Load() {
		return
	}

	if !c.cfg.AutoReconnect {
		c.setState(StateDisconnected, cause)
		return
	}

	c.setState(StateReconnecting, cause)
	c.wg.Add(1)
	go c.reconnectLoop()
}

func (c *Client) reconnectLoop() {
	defer c.wg.Done()

	backoff := c.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		if c.cfg.MaxReconnects > 0 && attempt > c.cfg.MaxReconnects {
			c.setState(StateDisconnected, apperror.New(apperror.CodeWebSocketConnectionError,
				apperror.WithContext(c.cfg.Name),
				apperror.WithMessage("reconnect attempts exhausted")))
			return
		}

		select {
		case <-c.ctx.Done():
			return
		case <-time.After(backoff):
		}

		if err := c.dial(c.ctx); err != nil {
			backoff = nextBackoff(backoff, c.cfg.MaxBackoff)
			continue
		}
		c.reconnects.Add(1)

		c.mu.RLock()
		hook := c.onReconnect
		c.mu.RUnlock()
		if hook != nil {
			if err := hook(c.ctx); err != nil {
				c.mu.RLock()
				conn := c.conn
				c.mu.RUnlock()
				if conn != nil {
					conn.CloseNow()
				}
			}
		}
		return
	}
}

// Send writes a text frame.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	conn, err := c.activeConn()
	if err != nil {
		return err
	}

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.cfg.Name),
			apperror.WithCause(err))
	}
	return nil
}

// SendJSON encodes v as JSON and writes it as a text frame.
func (c *Client) SendJSON(ctx context.Context, v any) error {
	conn, err := c.activeConn()
	if err != nil {
		return err
	}

	ctx, cancel := c.writeContext(ctx)
	defer cancel()

	if err := wsjson.Write(ctx, conn, v); err != nil {
		return apperror.New(apperror.CodeWebSocketSendError,
			apperror.WithContext(c.cfg.Name),
			apperror.WithCause(err))
	}
	return nil
}

func (c *Client) activeConn() (*websocket.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateClosed {
		return nil, apperror.New(apperror.CodeWebSocketClosed, apperror.WithContext(c.cfg.Name))
	}
	if c.conn == nil || c.state != StateConnected {
		return nil, apperror.New(apperror.CodeWebSocketReconnecting,
			apperror.WithContext(c.cfg.Name),
			apperror.WithMessage("not connected"))
	}
	return c.conn, nil
}

func (c *Client) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.WriteTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.WriteTimeout)
	}
	return context.WithCancel(ctx)
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsConnected reports whether the client currently holds a live connection.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Reconnects returns the number of successful reconnects.
func (c *Client) Reconnects() int64 {
	return c.reconnects.Load()
}

// Close closes the connection and stops background goroutines. It is
// safe to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.cancel()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		// Peer may already be gone; a failed close handshake is not an error here.
		if err := conn.Close(websocket.StatusNormalClosure, ""); err != nil {
			conn.CloseNow()
		}
	}

	c.wg.Wait()
	c.setState(StateClosed, nil)
	return nil
}

func (c *Client) setState(state State, err error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = state
	handler := c.onState
	c.mu.Unlock()

	if handler != nil {
		handler(state, err)
	}
}

func nextBackoff(cur, limit time.Duration) time.Duration {
	next := cur * 2
	if next > limit {
		return limit
	}
	return next
}

// IsNormalClose reports whether err is a normal close from the peer.
func IsNormalClose(err error) bool {
	var ce websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code == websocket.StatusNormalClosure || ce.Code == websocket.StatusGoingAway
	}
	return false
}
