package app

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apm"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

const tracerName = "github.com/fd1az/arbitrage-scout/business/scout/app"

// ScannerConfig holds the two markets and the notification threshold.
type ScannerConfig struct {
	Market1          marketDomain.MarketID
	Market2          marketDomain.MarketID
	MinProfitability decimal.Decimal
}

// Scanner compares the top of book of every pair listed on both markets
// and notifies when a directional ratio is above the threshold. The pair
// set and threshold are fixed at construction.
type Scanner struct {
	config   ScannerConfig
	pairs    []marketDomain.Pair
	prices   PriceLookup
	notifier Notifier
	logger   logger.LoggerInterface
	tracer   *apm.Tracer
	metrics  *scannerMetrics
	now      func() time.Time
}

// NewScanner lists both markets and keeps their intersection. Every
// failure is reported as a setup error (errors.Is(err, ErrSetup)).
func NewScanner(
	ctx context.Context,
	cfg ScannerConfig,
	lister PairLister,
	prices PriceLookup,
	notifier Notifier,
	log logger.LoggerInterface,
) (*Scanner, error) {
	switch {
	case cfg.Market1 == "" || cfg.Market2 == "":
		return nil, setupError("scanner config", errors.New("two market ids are required"))
	case cfg.Market1 == cfg.Market2:
		return nil, setupError("scanner config", errors.New("markets must be distinct"))
	case lister == nil || prices == nil:
		return nil, setupError("scanner config", errors.New("pair lister and price lookup are required"))
	case log == nil:
		return nil, setupError("scanner config", errors.New("logger is required"))
	}
	if notifier == nil {
		notifier = NewMultiNotifier()
	}

	tracer := apm.NewTracer(tracerName)
	ctx, span := tracer.Start(ctx, "scout.setup",
		attribute.String("market1", cfg.Market1.String()),
		attribute.String("market2", cfg.Market2.String()),
	)
	defer span.End()

	pairs1, err := lister.ListPairs(ctx, cfg.Market1)
	if err != nil {
		span.Fail(err)
		return nil, setupError("list pairs "+cfg.Market1.String(), err)
	}
	pairs2, err := lister.ListPairs(ctx, cfg.Market2)
	if err != nil {
		span.Fail(err)
		return nil, setupError("list pairs "+cfg.Market2.String(), err)
	}

	metrics, err := newScannerMetrics()
	if err != nil {
		return nil, setupError("scanner metrics", err)
	}

	pairs := domain.TradablePairs(pairs1, pairs2)
	span.SetAttributes(attribute.Int("pairs", len(pairs)))

	if len(pairs) == 0 {
		log.Warn(ctx, "markets share no pairs, nothing to scan",
			"market1", cfg.Market1, "listed1", len(pairs1),
			"market2", cfg.Market2, "listed2", len(pairs2))
	} else {
		log.Info(ctx, "scanner ready",
			"market1", cfg.Market1,
			"market2", cfg.Market2,
			"pairs", len(pairs),
			"min_profitability", cfg.MinProfitability.String())
	}

	return &Scanner{
		config:   cfg,
		pairs:    pairs,
		prices:   prices,
		notifier: notifier,
		logger:   log,
		tracer:   tracer,
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

// Pairs returns a copy of the tradable pair set.
func (s *Scanner) Pairs() []marketDomain.Pair {
	out := make([]marketDomain.Pair, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// Config returns the scanner configuration.
func (s *Scanner) Config() ScannerConfig {
	return s.config
}

// Tick scans every pair once. A pair whose lookups fail is skipped for
// this tick. Only context cancellation stops the scan early; the
// notifications produced until then are returned with the context error.
func (s *Scanner) Tick(ctx context.Context) ([]domain.Notification, error) {
	ctx, span := s.tracer.Start(ctx, "scout.tick", attribute.Int("pairs", len(s.pairs)))
	defer span.End()

	start := time.Now()
	s.logger.Debug(ctx, "set of trading pairs", "pairs", s.pairs)
	s.logger.Info(ctx, domain.Header(s.config.Market1, s.config.Market2))

	var out []domain.Notification
	skipped := 0

	for _, pair := range s.pairs {
		if err := ctx.Err(); err != nil {
			return s.abort(ctx, span, out, err)
		}

		quote, err := s.quote(ctx, pair)
		if err != nil {
			if ctx.Err() != nil {
				return s.abort(ctx, span, out, ctx.Err())
			}
			skipped++
			span.AddEvent("pair.skipped", attribute.String("pair", pair.String()))
			s.skip(ctx, pair, err)
			continue
		}

		for _, d := range []domain.Direction{domain.DirectionBuy1Sell2, domain.DirectionBuy2Sell1} {
			ratio, ok := quote.Ratio(d)
			if !ok || !ratio.GreaterThan(s.config.MinProfitability) {
				continue
			}
			n := domain.NewNotification(pair, d, s.config.Market1, s.config.Market2, ratio, s.now())
			out = append(out, n)
			s.deliver(ctx, n)
		}
	}

	elapsed := time.Since(start)
	s.metrics.ticks.Add(ctx, 1)
	s.metrics.tickDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0)
	span.SetAttributes(
		attribute.Int("notifications", len(out)),
		attribute.Int("skipped", skipped),
	)

	return out, nil
}

// quote performs the four lookups in order and stops at the first failure.
// A non-positive ask is treated as a missing order book.
func (s *Scanner) quote(ctx context.Context, pair marketDomain.Pair) (domain.Quote, error) {
	lookups := []struct {
		market marketDomain.MarketID
		side   marketDomain.Side
	}{
		{s.config.Market1, marketDomain.SideBid},
		{s.config.Market1, marketDomain.SideAsk},
		{s.config.Market2, marketDomain.SideBid},
		{s.config.Market2, marketDomain.SideAsk},
	}

	var prices [4]decimal.Decimal
	for i, l := range lookups {
		s.metrics.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("market", l.market.String())))

		price, err := s.prices.GetPrice(ctx, l.market, pair, l.side)
		if err != nil {
			return domain.Quote{}, err
		}
		if l.side.IsAsk() && !price.IsPositive() {
			return domain.Quote{}, apperror.NoLiquidity(l.market.String()+" "+pair.String()+" ask "+price.String(), nil)
		}
		prices[i] = price
	}

	return domain.Quote{Bid1: prices[0], Ask1: prices[1], Bid2: prices[2], Ask2: prices[3]}, nil
}

func (s *Scanner) skip(ctx context.Context, pair marketDomain.Pair, err error) {
	if errors.Is(err, ErrNoLiquidity) {
		s.metrics.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "no_liquidity")))
		s.logger.Info(ctx, pair.String()+" has no bid or ask order book", "error", err)
		return
	}

	s.metrics.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "lookup_failed")))
	wrapped := apperror.New(apperror.CodeQuoteLookupFailed,
		apperror.WithContext(pair.String()),
		apperror.WithCause(err))
	s.logger.Warn(ctx, "quote lookup failed, skipping pair",
		"pair", pair,
		"code", apperror.GetCode(err),
		"error", wrapped)
}

func (s *Scanner) deliver(ctx context.Context, n domain.Notification) {
	s.metrics.notifications.Add(ctx, 1, metric.WithAttributes(attribute.String("direction", string(n.Direction))))

	if err := s.notifier.Notify(ctx, n); err != nil {
		s.metrics.notifyErrors.Add(ctx, 1)
		s.logger.Error(ctx, "notification delivery failed", "id", n.ID, "message", n.Message(), "error", err)
	}
}

func (s *Scanner) abort(ctx context.Context, span apm.Span, out []domain.Notification, err error) ([]domain.Notification, error) {
	span.Fail(err)
	s.logger.Debug(ctx, "tick cancelled", "notifications", len(out))
	return out, err
}
