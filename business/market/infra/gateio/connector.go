package gateio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scout/business/market/app"
	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scout/internal/httpclient"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/ratelimit"
)

const (
	BaseAPIURL = "https://api.gateio.ws"

	currencyPairsEndpoint = "/api/v4/spot/currency_pairs"
	tickersEndpoint       = "/api/v4/spot/tickers"

	tradeStatusTradable = "tradable"
	labelInvalidPair    = "INVALID_CURRENCY_PAIR"
	labelTooManyRequest = "TOO_MANY_REQUESTS"

	tracerName  = "gateio"
	httpTimeout = 10 * time.Second
)

var _ app.Connector = (*Connector)(nil)

// Config holds configuration for the Gate.io connector.
type Config struct {
	Name              domain.MarketID
	RestURL           string
	RequestTimeout    time.Duration
	RequestsPerSecond float64 // 0 = unlimited
	QuoteAssets       []string
}

// Connector implements app.Connector for Gate.io spot over REST.
type Connector struct {
	config Config
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
	quotes map[string]struct{}
}

// NewConnector creates a Gate.io connector.
func NewConnector(cfg Config, log logger.LoggerInterface) (*Connector, error) {
	if cfg.Name == "" {
		cfg.Name = "gate_io"
	}
	baseURL := cfg.RestURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("gateio"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](
			circuitbreaker.DefaultConfig("gateio-rest"),
		)),
	}
	if cfg.RequestsPerSecond > 0 {
		burst := max(1, int(cfg.RequestsPerSecond))
		opts = append(opts, httpclient.WithRateLimiter(ratelimit.NewWithBurst("gateio-rest", cfg.RequestsPerSecond, burst)))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	c := &Connector{
		config: cfg,
		client: client,
		logger: log,
		tracer: tracer,
		quotes: make(map[string]struct{}, len(cfg.QuoteAssets)),
	}
	for _, q := range cfg.QuoteAssets {
		c.quotes[strings.ToUpper(strings.TrimSpace(q))] = struct{}{}
	}
	return c, nil
}

// Name returns the market id.
func (c *Connector) Name() domain.MarketID {
	return c.config.Name
}

// ListPairs returns every currency pair with trade_status "tradable".
func (c *Connector) ListPairs(ctx context.Context) ([]domain.Pair, error) {
	ctx, span := c.tracer.Start(ctx, "gateio.list_pairs")
	defer span.End()

	var result []CurrencyPair
	_, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "currency_pairs")),
		httpclient.WithResponseErrorHandler(gateErrorHandler("currency_pairs")),
	).
		SetResult(&result).
		Get(ctx, currencyPairsEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeMarketUnavailable,
			apperror.WithContext(c.config.Name.String()),
			apperror.WithCause(err))
	}

	pairs := make([]domain.Pair, 0, len(result))
	for _, p := range result {
		if !p.Tradable() {
			continue
		}
		pair := p.Pair()
		if len(c.quotes) > 0 {
			if _, ok := c.quotes[pair.Quote()]; !ok {
				continue
			}
		}
		pairs = append(pairs, pair)
	}

	span.SetAttributes(attribute.Int("pairs", len(pairs)))
	c.logger.Debug(ctx, "gate.io pairs listed", "listed", len(result), "tradable", len(pairs))
	return pairs, nil
}

// BestPrice returns highest_bid or lowest_ask of pair.
func (c *Connector) BestPrice(ctx context.Context, pair domain.Pair, side domain.Side) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "gateio.best_price",
		trace.WithAttributes(
			attribute.String("pair", pair.String()),
			attribute.String("side", string(side)),
		),
	)
	defer span.End()

	id := currencyPairID(pair)
	var result []Ticker
	_, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "tickers")),
		httpclient.WithResponseErrorHandler(gateErrorHandler(id)),
	).
		SetQueryParam("currency_pair", id).
		SetResult(&result).
		Get(ctx, tickersEndpoint)
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, err
	}

	noLiquidity := apperror.NoLiquidity(c.config.Name.String()+" "+pair.String()+" "+string(side), nil)
	if len(result) == 0 {
		return decimal.Zero, noLiquidity
	}

	raw := result[0].HighestBid
	if side.IsAsk() {
		raw = result[0].LowestAsk
	}
	if raw == "" {
		return decimal.Zero, noLiquidity
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidTicker,
			apperror.WithContext("gate.io "+id),
			apperror.WithCause(err))
	}
	if !price.IsPositive() {
		return decimal.Zero, noLiquidity
	}
	return price, nil
}

// gateErrorHandler maps Gate.io error bodies to application errors.
func gateErrorHandler(subject string) httpclient.ResponseErrorHandler {
	return func(statusCode int, body []byte) error {
		if statusCode < 400 {
			return nil
		}

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Label == "" {
			return apperror.New(apperror.CodeExchangeAPIError,
				apperror.WithContext(fmt.Sprintf("gate.io %s: HTTP %d", subject, statusCode)),
				apperror.WithMessage(string(body)))
		}

		switch apiErr.Label {
		case labelInvalidPair:
			return apperror.NoLiquidity("gate.io "+subject, &apiErr)
		case labelTooManyRequest:
			return apperror.New(apperror.CodeExchangeRateLimited,
				apperror.WithContext("gate.io "+subject),
				apperror.WithCause(&apiErr))
		}
		if statusCode == http.StatusNotFound {
			return apperror.New(apperror.CodeNotFound,
				apperror.WithContext("gate.io "+subject),
				apperror.WithCause(&apiErr))
		}
		return apperror.New(apperror.CodeExchangeAPIError,
			apperror.WithContext("gate.io "+subject),
			apperror.WithCause(&apiErr))
	}
}
