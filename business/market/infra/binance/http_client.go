package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scout/internal/httpclient"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/ratelimit"
)

const (
	// Binance REST API endpoints
	BaseAPIURL   = "https://api.binance.com"
	BaseAPIURLUS = "https://api.binance.us"

	exchangeInfoEndpoint = "/api/v3/exchangeInfo"
	bookTickerEndpoint   = "/api/v3/ticker/bookTicker"

	// Request weights as documented by Binance.
	exchangeInfoWeight = 20
	bookTickerWeight   = 2

	errCodeInvalidSymbol = -1121
	symbolStatusTrading  = "TRADING"

	httpTimeout = 10 * time.Second
)

// HTTPClientConfig holds configuration for the Binance HTTP client.
type HTTPClientConfig struct {
	BaseURL           string        // API base URL (empty = default)
	Timeout           time.Duration // Request timeout
	RequestsPerMinute int           // Weight budget per minute (0 = unlimited)
}

// HTTPClient provides Binance REST API access.
type HTTPClient struct {
	client httpclient.Client
	logger logger.LoggerInterface
	tracer trace.Tracer
}

// NewHTTPClient creates a new Binance HTTP client.
func NewHTTPClient(cfg HTTPClientConfig, log logger.LoggerInterface) (*HTTPClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = BaseAPIURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = httpTimeout
	}

	tracer := otel.Tracer(tracerName)

	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("binance"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceResponse),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
		httpclient.WithCircuitBreaker(circuitbreaker.New[*httpclient.Response](
			circuitbreaker.DefaultConfig("binance-rest"),
		)),
	}
	if cfg.RequestsPerMinute > 0 {
		opts = append(opts, httpclient.WithRateLimiter(ratelimit.New("binance-rest", cfg.RequestsPerMinute)))
	}

	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &HTTPClient{
		client: client,
		logger: log,
		tracer: tracer,
	}, nil
}

// GetExchangeInfo fetches every listed symbol.
func (c *HTTPClient) GetExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.exchange_info")
	defer span.End()

	var result ExchangeInfo
	_, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "exchangeInfo")),
		httpclient.WithResponseErrorHandler(binanceErrorHandler("exchangeInfo")),
		httpclient.WithWeight(exchangeInfoWeight),
	).
		SetResult(&result).
		Get(ctx, exchangeInfoEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("symbols", len(result.Symbols)))
	return &result, nil
}

// GetBookTicker fetches the best bid and ask of symbol.
func (c *HTTPClient) GetBookTicker(ctx context.Context, symbol string) (*BookTickerResponse, error) {
	ctx, span := c.tracer.Start(ctx, "binance.http.book_ticker",
		trace.WithAttributes(attribute.String("symbol", symbol)),
	)
	defer span.End()

	var result BookTickerResponse
	_, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "bookTicker")),
		httpclient.WithResponseErrorHandler(binanceErrorHandler(symbol)),
		httpclient.WithWeight(bookTickerWeight),
	).
		SetQueryParam("symbol", symbol).
		SetResult(&result).
		Get(ctx, bookTickerEndpoint)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.logger.Debug(ctx, "fetched book ticker via HTTP",
		"symbol", symbol,
		"bid", result.BidPrice,
		"ask", result.AskPrice)

	return &result, nil
}

// binanceErrorHandler maps Binance error bodies to application errors.
// An unknown symbol means the pair has no order book here.
func binanceErrorHandler(subject string) httpclient.ResponseErrorHandler {
	return func(statusCode int, body []byte) error {
		if statusCode < 400 {
			return nil
		}

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code == 0 {
			return apperror.New(apperror.CodeExchangeAPIError,
				apperror.WithContext(fmt.Sprintf("binance %s: HTTP %d", subject, statusCode)),
				apperror.WithMessage(string(body)))
		}

		switch {
		case apiErr.Code == errCodeInvalidSymbol:
			return apperror.NoLiquidity("binance "+subject, &apiErr)
		case statusCode == http.StatusTeapot:
			return apperror.New(apperror.CodeExchangeRateLimited,
				apperror.WithContext("binance "+subject),
				apperror.WithCause(&apiErr))
		default:
			return apperror.New(apperror.CodeExchangeAPIError,
				apperror.WithContext("binance "+subject),
				apperror.WithCause(&apiErr))
		}
	}
}
