package app

import (
	"context"
	"sync"
	"time"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

// Ticker is the scanner operation the runner drives.
type Ticker interface {
	Tick(ctx context.Context) ([]domain.Notification, error)
}

// TickReport summarises one tick.
type TickReport struct {
	Number        int64
	Pairs         int
	Notifications []domain.Notification
	Duration      time.Duration
	Err           error
	At            time.Time
}

// Runner calls Tick on a fixed interval from a single goroutine, so ticks
// never overlap. A slow tick delays the next one rather than queueing.
type Runner struct {
	ticker   Ticker
	pairs    int
	interval time.Duration
	logger   logger.LoggerInterface

	mu     sync.Mutex
	onTick []func(TickReport)
	cancel context.CancelFunc
	done   chan struct{}
	count  int64
}

// NewRunner creates a runner. pairs is reported in TickReport.
func NewRunner(t Ticker, pairs int, interval time.Duration, log logger.LoggerInterface) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		ticker:   t,
		pairs:    pairs,
		interval: interval,
		logger:   log,
	}
}

// OnTick registers a hook called after every tick.
func (r *Runner) OnTick(fn func(TickReport)) {
	r.mu.Lock()
	r.onTick = append(r.onTick, fn)
	r.mu.Unlock()
}

// Start launches the loop. The first tick runs immediately. Calling Start
// on a running runner is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done != nil {
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go r.run(ctx, r.done)

	r.logger.Info(ctx, "scout runner started", "interval", r.interval.String())
}

// Stop cancels the loop and waits for the current tick to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Ticks returns the number of completed ticks.
func (r *Runner) Ticks() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Runner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(r.interval)
	defer t.Stop()

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info(context.WithoutCancel(ctx), "scout runner stopping", "ticks", r.Ticks())
			return
		case <-t.C:
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := time.Now()
	notes, err := r.ticker.Tick(ctx)
	if ctx.Err() != nil && err != nil {
		return
	}
	if err != nil {
		r.logger.Error(ctx, "tick failed", "error", err)
	}

	r.mu.Lock()
	r.count++
	report := TickReport{
		Number:        r.count,
		Pairs:         r.pairs,
		Notifications: notes,
		Duration:      time.Since(start),
		Err:           err,
		At:            start,
	}
	hooks := append([]func(TickReport){}, r.onTick...)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn(report)
	}
}
