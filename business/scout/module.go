// Package scout implements the spread scanner bounded context.
package scout

import (
	"context"
	"io"
	"os"
	"sync"

	marketDI "github.com/fd1az/arbitrage-scout/business/market/di"
	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/app"
	scoutDI "github.com/fd1az/arbitrage-scout/business/scout/di"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/di"
	"github.com/fd1az/arbitrage-scout/internal/health"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/monolith"
)

// Module implements the scout bounded context. It depends on the market
// module's MarketService.
type Module struct {
	// Out receives console notifications. Defaults to stdout.
	Out io.Writer

	mu      sync.RWMutex
	sinks   *sinks
	scanner *app.Scanner
	runner  *app.Runner
}

// RegisterServices registers the notification fan-out and the heartbeat.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	log := c.Get("logger").(logger.LoggerInterface)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	s, err := newSinks(cfg, out, log)
	if err != nil {
		return err
	}
	m.sinks = s

	di.RegisterValue(c, scoutDI.Notifier, s.fanout)
	di.RegisterValue(c, scoutDI.Heartbeat, &health.Heartbeat{})
	return nil
}

// Startup opens the stores, builds the scanner and starts the runner.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	log := mono.Logger()
	markets := marketDI.GetMarketService(mono.Services())
	fanout := scoutDI.GetNotifier(mono.Services())
	heartbeat := scoutDI.GetHeartbeat(mono.Services())

	closers, err := openStores(ctx, cfg, fanout)
	for _, fn := range closers {
		mono.OnClose(fn)
	}
	if err != nil {
		return err
	}

	m.step("markets", "connecting", "")
	scanner, err := NewScanner(ctx, cfg, markets, fanout, log)
	if err != nil {
		m.step("markets", "failed", err.Error())
		return err
	}
	m.step("markets", "connected", "")
	m.step("scanner", "connecting", "")

	pairs := scanner.Pairs()
	for _, market := range []marketDomain.MarketID{scanner.Config().Market1, scanner.Config().Market2} {
		if err := markets.Track(ctx, market, pairs); err != nil {
			log.Warn(ctx, "market tracking unavailable, using polling", "market", market, "error", err)
		}
	}

	runner := app.NewRunner(scanner, len(pairs), cfg.Scout.TickInterval, log)
	runner.OnTick(func(app.TickReport) { heartbeat.Beat() })

	if dash := m.sinks.dash; dash != nil {
		dash.Setup(scanner.Config(), pairs, cfg.Scout.TickInterval)
		runner.OnTick(dash.Report)
	}
	if c := m.sinks.console; c != nil {
		c.Banner(scanner.Config().Market1.String(), scanner.Config().Market2.String())
	}

	m.mu.Lock()
	m.scanner = scanner
	m.runner = runner
	m.mu.Unlock()

	runner.Start(ctx)
	mono.OnClose(func() error {
		runner.Stop()
		return nil
	})

	m.step("scanner", "connected", "")
	log.Info(ctx, "scout module started",
		"market1", scanner.Config().Market1,
		"market2", scanner.Config().Market2,
		"pairs", len(pairs),
		"sinks", fanout.Len())
	return nil
}

// Scanner returns the running scanner, nil before Startup.
func (m *Module) Scanner() *app.Scanner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanner
}

// Runner returns the tick loop, nil before Startup.
func (m *Module) Runner() *app.Runner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runner
}

// ScannerCheck reports whether the scanner was constructed.
func (m *Module) ScannerCheck() health.CheckFunc {
	return func(ctx context.Context) (bool, string) {
		s := m.Scanner()
		if s == nil {
			return false, "scanner not constructed"
		}
		return true, ""
	}
}

func (m *Module) step(step, status, message string) {
	if m.sinks != nil && m.sinks.dash != nil {
		m.sinks.dash.Step(step, status, message)
	}
}

// Markets is what the scanner needs from the market context.
type Markets interface {
	app.PairLister
	app.PriceLookup
}

// NewScanner builds a scanner over the two configured markets.
func NewScanner(ctx context.Context, cfg *config.Config, markets Markets, notifier app.Notifier, log logger.LoggerInterface) (*app.Scanner, error) {
	threshold, err := cfg.Scout.MinProfitabilityDecimal()
	if err != nil {
		return nil, err
	}
	return app.NewScanner(ctx, app.ScannerConfig{
		Market1:          marketDomain.MarketID(cfg.Scout.Market1()),
		Market2:          marketDomain.MarketID(cfg.Scout.Market2()),
		MinProfitability: threshold,
	}, markets, markets, notifier, log)
}
