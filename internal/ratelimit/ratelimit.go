// Package ratelimit provides token-bucket limiters built on golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// Limiter wraps rate.Limiter and reports waits that cannot complete as
// rate-limit errors.
type Limiter struct {
	name    string
	limiter *rate.Limiter
}

// New creates a limiter allowing requestsPerMinute with a burst of 10% of
// that rate (at least 1).
func New(name string, requestsPerMinute int) *Limiter {
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return NewWithBurst(name, float64(requestsPerMinute)/60.0, burst)
}

// NewWithBurst creates a limiter with an explicit per-second rate and burst.
// A non-positive rate disables limiting.
func NewWithBurst(name string, requestsPerSecond float64, burst int) *Limiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		name:    name,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Wait blocks until one token is available.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.WaitN(ctx, 1)
}

// WaitN blocks until n tokens are available. Exchanges that price
// endpoints by request weight call this with the endpoint weight.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	if err := l.limiter.WaitN(ctx, n); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext(l.name),
			apperror.WithCause(err))
	}
	return nil
}

// Allow reports whether an event may happen now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Tokens returns the current number of available tokens.
func (l *Limiter) Tokens() float64 {
	return l.limiter.Tokens()
}

// Keyed hands out one limiter per key, e.g. per Telegram chat.
type Keyed struct {
	mu       sync.Mutex
	name     string
	rps      float64
	burst    int
	limiters map[string]*Limiter
}

// NewKeyed creates a keyed limiter where every key gets rps and burst.
func NewKeyed(name string, rps float64, burst int) *Keyed {
	return &Keyed{
		name:     name,
		rps:      rps,
		burst:    burst,
		limiters: make(map[string]*Limiter),
	}
}

// Wait blocks until the limiter for key has a token.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.get(key).Wait(ctx)
}

func (k *Keyed) get(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	l, ok := k.limiters[key]
	if !ok {
		l = NewWithBurst(k.name+":"+key, k.rps, k.burst)
		k.limiters[key] = l
	}
	return l
}
