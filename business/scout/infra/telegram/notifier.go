// Package telegram delivers notifications through the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scout/internal/httpclient"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/ratelimit"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	tracerName     = "telegram"
	defaultTimeout = 10 * time.Second
	defaultPerChat = 1.0
	perChatBurst   = 3
	methodSendText = "sendMessage"
)

// Config configures the Telegram sink.
type Config struct {
	APIURL          string
	BotToken        string
	ChatIDs         []string
	RequestTimeout  time.Duration
	MessagesPerChat float64 // per second
}

// Notifier sends every notification to each configured chat.
type Notifier struct {
	client  *httpclient.InstrumentedClient
	token   string
	chats   []string
	limiter *ratelimit.Keyed
	logger  logger.LoggerInterface
}

// NewNotifier creates a Telegram sink.
func NewNotifier(cfg Config, log logger.LoggerInterface) (*Notifier, error) {
	if cfg.BotToken == "" {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContext("telegram bot token"))
	}
	if len(cfg.ChatIDs) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError, apperror.WithContext("telegram chat ids"))
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.MessagesPerChat <= 0 {
		cfg.MessagesPerChat = defaultPerChat
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("telegram"),
		httpclient.WithBaseURL(cfg.APIURL),
		httpclient.WithRequestTimeout(cfg.RequestTimeout),
		httpclient.WithTraceOptions(otel.Tracer(tracerName)),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](circuitbreaker.DefaultConfig("telegram"))),
	)
	if err != nil {
		return nil, err
	}

	return &Notifier{
		client:  client,
		token:   cfg.BotToken,
		chats:   append([]string(nil), cfg.ChatIDs...),
		limiter: ratelimit.NewKeyed("telegram", cfg.MessagesPerChat, perChatBurst),
		logger:  log,
	}, nil
}

// Notify sends the message to every chat. A failing chat does not stop
// delivery to the others.
func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	var errs []error
	for _, chat := range n.chats {
		if err := n.send(ctx, chat, note.Message()); err != nil {
			n.logger.Warn(ctx, "telegram delivery failed", "chat", chat, "id", note.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) send(ctx context.Context, chat, text string) error {
	if err := n.limiter.Wait(ctx, chat); err != nil {
		return err
	}

	var out apiResponse
	_, err := n.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("method", methodSendText)),
		httpclient.WithResponseErrorHandler(telegramErrorHandler(chat)),
	).
		SetBody(sendMessageRequest{ChatID: chat, Text: text, DisableWebPagePreview: true}).
		SetResult(&out).
		Post(ctx, fmt.Sprintf("/bot%s/%s", n.token, methodSendText))
	if err != nil {
		return err
	}
	if !out.OK {
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("telegram chat "+chat),
			apperror.WithMessage(out.Description))
	}
	return nil
}

// telegramErrorHandler maps 4xx replies. 429 and 5xx never reach it: the
// client reports them as rate limit and unavailable errors.
func telegramErrorHandler(chat string) httpclient.ResponseErrorHandler {
	return func(status int, body []byte) error {
		if status < http.StatusBadRequest {
			return nil
		}

		var resp apiResponse
		_ = json.Unmarshal(body, &resp)
		msg := resp.Description
		if msg == "" {
			msg = http.StatusText(status)
		}
		return apperror.New(apperror.CodeNotificationFailed,
			apperror.WithContext("telegram chat "+chat),
			apperror.WithMessage(fmt.Sprintf("%d: %s", status, msg)))
	}
}
