package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apm"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

const tracerName = "github.com/fd1az/arbitrage-scout/business/market/app"

// MarketService routes pair listings and price lookups to the connector
// registered for a market id.
type MarketService struct {
	mu         sync.RWMutex
	connectors map[domain.MarketID]Connector
	tracer     *apm.Tracer
}

// NewMarketService creates a service with the given connectors.
func NewMarketService(connectors ...Connector) *MarketService {
	s := &MarketService{
		connectors: make(map[domain.MarketID]Connector, len(connectors)),
		tracer:     apm.NewTracer(tracerName),
	}
	for _, c := range connectors {
		s.Register(c)
	}
	return s
}

// Register adds or replaces the connector for c.Name().
func (s *MarketService) Register(c Connector) {
	s.mu.Lock()
	s.connectors[c.Name()] = c
	s.mu.Unlock()
}

// Connector returns the connector registered for market.
func (s *MarketService) Connector(market domain.MarketID) (Connector, error) {
	s.mu.RLock()
	c, ok := s.connectors[market]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NotFound(apperror.CodeMarketNotFound, market.String())
	}
	return c, nil
}

// Markets returns the registered market ids, sorted.
func (s *MarketService) Markets() []domain.MarketID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]domain.MarketID, 0, len(s.connectors))
	for id := range s.connectors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ListPairs lists the pairs of market. Connector failures are reported as
// CodeMarketUnavailable.
func (s *MarketService) ListPairs(ctx context.Context, market domain.MarketID) ([]domain.Pair, error) {
	ctx, span := s.tracer.Start(ctx, "market.list_pairs", attribute.String("market", market.String()))
	defer span.End()

	c, err := s.Connector(market)
	if err != nil {
		span.Fail(err)
		return nil, err
	}

	pairs, err := c.ListPairs(ctx)
	if err != nil {
		span.Fail(err)
		if errors.Is(err, context.Canceled) || apperror.HasCode(err, apperror.CodeMarketUnavailable) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeMarketUnavailable,
			apperror.WithContext(market.String()),
			apperror.WithCause(err))
	}

	span.SetAttributes(attribute.Int("pairs", len(pairs)))
	return pairs, nil
}

// GetPrice returns the best price of pair on side. Connector errors are
// returned unchanged so NoLiquidity stays recognisable.
func (s *MarketService) GetPrice(ctx context.Context, market domain.MarketID, pair domain.Pair, side domain.Side) (decimal.Decimal, error) {
	c, err := s.Connector(market)
	if err != nil {
		return decimal.Zero, err
	}
	return c.BestPrice(ctx, pair, side)
}

// Track asks a streaming connector to cache pairs. Non-streaming
// connectors ignore the call.
func (s *MarketService) Track(ctx context.Context, market domain.MarketID, pairs []domain.Pair) error {
	c, err := s.Connector(market)
	if err != nil {
		return err
	}
	if t, ok := c.(Tracker); ok {
		return t.Track(ctx, pairs)
	}
	return nil
}

// Close closes every connector that holds resources.
func (s *MarketService) Close() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	for _, c := range s.connectors {
		if cl, ok := c.(Closer); ok {
			if err := cl.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
