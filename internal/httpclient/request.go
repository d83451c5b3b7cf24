package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// Request is the interface for building and executing HTTP requests.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	SetResult(result any) Request
}

// Response wraps http.Response with the already-read body.
type Response struct {
	*http.Response
	body []byte
}

// Body returns the response body as bytes.
func (r *Response) Body() []byte {
	return r.body
}

// String returns the response body as string.
func (r *Response) String() string {
	return string(r.body)
}

// IsError returns true if the status code indicates an error (>= 400).
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

type requestBuilder struct {
	c            *InstrumentedClient
	headers      map[string]string
	query        url.Values
	body         any
	result       any
	errorHandler ResponseErrorHandler
	labels       []*Label
	weight       int
}

// Get executes a GET request.
func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

// Post executes a POST request.
func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

// SetBody sets the request body. Values other than []byte, string and
// io.Reader are JSON encoded.
func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

// SetResult sets the target for JSON decoding of a successful body.
func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	ctx, span := r.c.tracer.Start(ctx, "http.request",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("provider", r.c.providerName),
		),
	)
	defer span.End()

	if r.c.limiter != nil {
		if err := r.c.limiter.WaitN(ctx, r.weight); err != nil {
			r.fail(ctx, span, err, 0)
			return nil, err
		}
	}

	req, err := r.build(ctx, method, path, span)
	if err != nil {
		r.fail(ctx, span, err, 0)
		return nil, err
	}

	start := time.Now()
	var resp *Response
	if r.c.breaker != nil {
		resp, err = r.c.breaker.Execute(func() (*Response, error) {
			return r.do(req)
		})
	} else {
		resp, err = r.do(req)
	}
	elapsed := time.Since(start)

	if err != nil {
		r.fail(ctx, span, err, elapsed)
		return resp, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if r.c.logResponse {
		span.AddEvent("response.body", trace.WithAttributes(
			attribute.String("http.response_body", string(resp.body)),
		))
	}

	if r.errorHandler != nil {
		if handlerErr := r.errorHandler(resp.StatusCode, resp.body); handlerErr != nil {
			r.fail(ctx, span, handlerErr, elapsed)
			return resp, handlerErr
		}
	}

	if !resp.IsError() && r.result != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, r.result); err != nil {
			decodeErr := apperror.New(apperror.CodeInvalidFormat,
				apperror.WithContext(r.c.providerName+" "+path),
				apperror.WithCause(err))
			r.fail(ctx, span, decodeErr, elapsed)
			return resp, decodeErr
		}
	}

	r.record(ctx, !resp.IsError(), elapsed)
	return resp, nil
}

func (r *requestBuilder) build(ctx context.Context, method, path string, span trace.Span) (*http.Request, error) {
	fullURL := path
	if r.c.baseURL != "" && !strings.HasPrefix(path, "http") {
		fullURL = strings.TrimSuffix(r.c.baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + r.query.Encode()
	}

	var bodyReader io.Reader
	switch b := r.body.(type) {
	case nil:
	case []byte:
		bodyReader = bytes.NewReader(b)
	case string:
		bodyReader = strings.NewReader(b)
	case io.Reader:
		bodyReader = b
	default:
		encoded, err := json.Marshal(b)
		if err != nil {
			return nil, apperror.New(apperror.CodeInvalidInput,
				apperror.WithContext("request body"),
				apperror.WithCause(err))
		}
		bodyReader = bytes.NewReader(encoded)
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		if r.c.logRequest {
			span.AddEvent("request.body", trace.WithAttributes(
				attribute.String("http.request_body", string(encoded)),
			))
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fullURL),
			apperror.WithCause(err))
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do sends req and reads the body. 429 and 5xx are reported as errors so a
// circuit breaker counts them as failures.
func (r *requestBuilder) do(req *http.Request) (*Response, error) {
	resp, err := r.c.client.Do(req)
	if err != nil {
		code := apperror.CodeExternalServiceError
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			code = apperror.CodeServiceTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperror.New(code,
			apperror.WithContext(r.c.providerName),
			apperror.WithCause(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.New(apperror.CodeExternalServiceError,
			apperror.WithContext(r.c.providerName),
			apperror.WithCause(err))
	}

	out := &Response{Response: resp, body: body}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return out, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext(r.c.providerName),
			apperror.WithMessage(resp.Status))
	case resp.StatusCode >= 500:
		return out, apperror.New(apperror.CodeServiceUnavailable,
			apperror.WithContext(r.c.providerName),
			apperror.WithMessage(resp.Status))
	}
	return out, nil
}

func (r *requestBuilder) fail(ctx context.Context, span trace.Span, err error, elapsed time.Duration) {
	span.RecordError(err)
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	span.SetStatus(codes.Error, err.Error())
	r.record(ctx, false, elapsed)
}

func (r *requestBuilder) record(ctx context.Context, success bool, elapsed time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", r.c.providerName),
		attribute.Bool("success", success),
	}
	for _, label := range r.labels {
		attrs = append(attrs, attribute.String(label.Key, label.Value))
	}

	opt := metric.WithAttributes(attrs...)
	r.c.requestCounter.Add(ctx, 1, opt)
	if elapsed > 0 {
		r.c.requestDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0, opt)
	}
}
