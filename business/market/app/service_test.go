package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

type fakeConnector struct {
	name     domain.MarketID
	pairs    []domain.Pair
	listErr  error
	priceErr error
	tracked  []domain.Pair
	closed   bool
}

func (f *fakeConnector) Name() domain.MarketID { return f.name }

func (f *fakeConnector) ListPairs(context.Context) ([]domain.Pair, error) {
	return f.pairs, f.listErr
}

func (f *fakeConnector) BestPrice(_ context.Context, _ domain.Pair, side domain.Side) (decimal.Decimal, error) {
	if f.priceErr != nil {
		return decimal.Zero, f.priceErr
	}
	if side.IsAsk() {
		return decimal.NewFromInt(101), nil
	}
	return decimal.NewFromInt(100), nil
}

func (f *fakeConnector) Track(_ context.Context, pairs []domain.Pair) error {
	f.tracked = pairs
	return nil
}

func (f *fakeConnector) Close() error {
	f.closed = true
	return nil
}

func TestMarketService_ListPairs(t *testing.T) {
	ctx := context.Background()
	ok := &fakeConnector{name: "a", pairs: []domain.Pair{"BTC-USDT"}}
	down := &fakeConnector{name: "b", listErr: errors.New("connection refused")}
	svc := NewMarketService(ok, down)

	pairs, err := svc.ListPairs(ctx, "a")
	if err != nil || len(pairs) != 1 {
		t.Fatalf("ListPairs(a) = %v, %v", pairs, err)
	}

	_, err = svc.ListPairs(ctx, "b")
	if !apperror.HasCode(err, apperror.CodeMarketUnavailable) {
		t.Errorf("ListPairs(b) err = %v, want MARKET_UNAVAILABLE", err)
	}

	_, err = svc.ListPairs(ctx, "missing")
	if !apperror.HasCode(err, apperror.CodeMarketNotFound) {
		t.Errorf("ListPairs(missing) err = %v, want MARKET_NOT_FOUND", err)
	}
}

func TestMarketService_GetPricePassesNoLiquidityThrough(t *testing.T) {
	ctx := context.Background()
	c := &fakeConnector{name: "a", priceErr: apperror.NoLiquidity("XYZ-USDT", nil)}
	svc := NewMarketService(c)

	_, err := svc.GetPrice(ctx, "a", "XYZ-USDT", domain.SideBid)
	if !apperror.HasCode(err, apperror.CodeNoLiquidity) {
		t.Errorf("err = %v, want NO_LIQUIDITY", err)
	}

	c.priceErr = nil
	ask, err := svc.GetPrice(ctx, "a", "XYZ-USDT", domain.SideAsk)
	if err != nil || !ask.Equal(decimal.NewFromInt(101)) {
		t.Errorf("ask = %s, %v", ask, err)
	}
}

func TestMarketService_TrackAndClose(t *testing.T) {
	c := &fakeConnector{name: "a"}
	svc := NewMarketService(c)

	if err := svc.Track(context.Background(), "a", []domain.Pair{"ETH-USDT"}); err != nil {
		t.Fatalf("Track: %v", err)
	}
	if len(c.tracked) != 1 {
		t.Errorf("tracked = %v", c.tracked)
	}
	if got := svc.Markets(); len(got) != 1 || got[0] != "a" {
		t.Errorf("Markets = %v", got)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !c.closed {
		t.Error("connector not closed")
	}
}
