// Package redisstream publishes notifications to a Redis stream and a
// pub/sub channel.
package redisstream

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

const (
	DefaultStream  = "scout:notifications"
	DefaultChannel = "scout.notifications"
)

// Config configures the sink.
type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	Channel  string
	MaxLen   int64 // approximate cap on the stream, 0 = unbounded
}

// Event is the JSON payload published on the channel.
type Event struct {
	ID         string `json:"id"`
	Pair       string `json:"pair"`
	Direction  string `json:"direction"`
	BuyMarket  string `json:"buy_market"`
	SellMarket string `json:"sell_market"`
	Ratio      string `json:"ratio"`
	Message    string `json:"message"`
	TsMs       int64  `json:"ts_ms"`
}

// NewEvent flattens a notification.
func NewEvent(n domain.Notification) Event {
	return Event{
		ID:         n.ID,
		Pair:       n.Pair.String(),
		Direction:  string(n.Direction),
		BuyMarket:  n.BuyMarket.String(),
		SellMarket: n.SellMarket.String(),
		Ratio:      domain.FormatRatio(n.Ratio),
		Message:    n.Message(),
		TsMs:       n.Timestamp.UnixMilli(),
	}
}

// Notifier appends to a stream with XADD, then PUBLISHes the event.
type Notifier struct {
	rdb     *redis.Client
	stream  string
	channel string
	maxLen  int64
	owned   bool
}

// New connects to Redis and pings it.
func New(ctx context.Context, cfg Config) (*Notifier, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext("redis "+cfg.Addr),
			apperror.WithCause(err))
	}

	n := NewWithClient(rdb, cfg)
	n.owned = true
	return n, nil
}

// NewWithClient wraps an existing client. Close leaves it open.
func NewWithClient(rdb *redis.Client, cfg Config) *Notifier {
	if strings.TrimSpace(cfg.Stream) == "" {
		cfg.Stream = DefaultStream
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		cfg.Channel = DefaultChannel
	}
	return &Notifier{
		rdb:     rdb,
		stream:  cfg.Stream,
		channel: cfg.Channel,
		maxLen:  cfg.MaxLen,
	}
}

func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	ev := NewEvent(note)

	if _, err := n.rdb.XAdd(ctx, n.xaddArgs(ev)).Result(); err != nil {
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("redis xadd "+n.stream),
			apperror.WithCause(err))
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("encode event"),
			apperror.WithCause(err))
	}
	if err := n.rdb.Publish(ctx, n.channel, payload).Err(); err != nil {
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("redis publish "+n.channel),
			apperror.WithCause(err))
	}
	return nil
}

// xaddArgs keeps field order stable so entries read back predictably.
func (n *Notifier) xaddArgs(ev Event) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: []any{
			"id", ev.ID,
			"pair", ev.Pair,
			"direction", ev.Direction,
			"buy_market", ev.BuyMarket,
			"sell_market", ev.SellMarket,
			"ratio", ev.Ratio,
			"message", ev.Message,
			"ts_ms", ev.TsMs,
		},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}
	return args
}

// Close closes the client when the notifier created it.
func (n *Notifier) Close() error {
	if !n.owned {
		return nil
	}
	return n.rdb.Close()
}
