package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-scout/internal/ratelimit"
)

type tickerResult struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
}

func TestRequest_GetDecodesResultAndEncodesQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/bookTicker" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTC USDT" {
			t.Errorf("symbol = %q", got)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("X-Test header = %q", got)
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","bidPrice":"100.5"}`)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithProviderName("test"),
		WithBaseURL(server.URL),
		WithHeaders(map[string]string{"X-Test": "yes"}),
		WithRequestTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	var result tickerResult
	resp, err := client.NewRequest().
		SetQueryParam("symbol", "BTC USDT").
		SetResult(&result).
		Get(context.Background(), "/api/v3/ticker/bookTicker")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.IsError() {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if result.Symbol != "BTCUSDT" || result.BidPrice != "100.5" {
		t.Errorf("result = %+v", result)
	}
}

func TestRequest_ErrorHandlerRunsBeforeDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"code":-1121,"msg":"Invalid symbol."}`)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	handler := func(status int, body []byte) error {
		if status == http.StatusBadRequest {
			return apperror.NoLiquidity("XYZ", nil)
		}
		return nil
	}

	_, err = client.NewRequestWithOptions(WithResponseErrorHandler(handler)).
		Get(context.Background(), "/ticker")
	if !apperror.HasCode(err, apperror.CodeNoLiquidity) {
		t.Errorf("err = %v, want NO_LIQUIDITY", err)
	}
}

func TestRequest_InvalidJSONIsFormatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	var result tickerResult
	_, err = client.NewRequest().SetResult(&result).Get(context.Background(), "/")
	if !apperror.HasCode(err, apperror.CodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestRequest_CircuitBreakerOpensOnServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cbCfg := circuitbreaker.DefaultConfig("test")
	cbCfg.FailureThreshold = 2

	client, err := NewInstrumentedClient(
		WithBaseURL(server.URL),
		WithCircuitBreaker(circuitbreaker.New[*Response](cbCfg)),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := client.NewRequest().Get(ctx, "/")
		if !apperror.HasCode(err, apperror.CodeServiceUnavailable) {
			t.Fatalf("call %d: err = %v, want SERVICE_UNAVAILABLE", i, err)
		}
	}

	_, err = client.NewRequest().Get(ctx, "/")
	if !apperror.HasCode(err, apperror.CodeCircuitOpen) {
		t.Errorf("err = %v, want CIRCUIT_OPEN", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2", got)
	}
}

func TestRequest_RateLimiterRejectsOverweight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client, err := NewInstrumentedClient(
		WithBaseURL(server.URL),
		WithRateLimiter(ratelimit.NewWithBurst("test", 1, 2)),
	)
	if err != nil {
		t.Fatalf("NewInstrumentedClient: %v", err)
	}

	// Weight above the burst can never be satisfied.
	_, err = client.NewRequestWithOptions(WithWeight(5)).Get(context.Background(), "/")
	if !apperror.HasCode(err, apperror.CodeRateLimitExceeded) {
		t.Errorf("err = %v, want RATE_LIMIT_EXCEEDED", err)
	}
}
