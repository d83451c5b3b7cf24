package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

const (
	mX marketDomain.MarketID = "X"
	mY marketDomain.MarketID = "Y"
)

func scannerConfig(threshold string) ScannerConfig {
	return ScannerConfig{
		Market1:          mX,
		Market2:          mY,
		MinProfitability: decimal.RequireFromString(threshold),
	}
}

// scenarioMarkets lists X=[A,B] and Y=[B,C].
func scenarioMarkets() *fakeMarkets {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"A", "B"}
	f.lists[mY] = []marketDomain.Pair{"B", "C"}
	return f
}

func TestNewScanner_IntersectsPairLists(t *testing.T) {
	f := scenarioMarkets()

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	assert.Equal(t, []marketDomain.Pair{"B"}, s.Pairs())
	assert.Equal(t, []marketDomain.MarketID{mX, mY}, f.listHits, "market 1 is listed before market 2")
}

func TestNewScanner_PairsIsACopy(t *testing.T) {
	f := scenarioMarkets()
	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	p := s.Pairs()
	p[0] = "MUTATED"
	assert.Equal(t, []marketDomain.Pair{"B"}, s.Pairs())
}

func TestNewScanner_EmptyIntersectionWarns(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"A"}
	f.lists[mY] = []marketDomain.Pair{"C"}
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, log)
	require.NoError(t, err)
	assert.Empty(t, s.Pairs())
	assert.True(t, log.has("WARN", "share no pairs"))

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Empty(t, f.lookups())
}

func TestNewScanner_SetupErrors(t *testing.T) {
	unavailable := apperror.New(apperror.CodeMarketUnavailable, apperror.WithContext("Y"))

	tests := []struct {
		name   string
		cfg    ScannerConfig
		mutate func(f *fakeMarkets)
	}{
		{"market 2 unavailable", scannerConfig("0.007"), func(f *fakeMarkets) { f.listErr[mY] = unavailable }},
		{"market 1 unavailable", scannerConfig("0.007"), func(f *fakeMarkets) { f.listErr[mX] = errors.New("dns") }},
		{"same market twice", ScannerConfig{Market1: mX, Market2: mX}, nil},
		{"missing market", ScannerConfig{Market1: mX}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := scenarioMarkets()
			if tt.mutate != nil {
				tt.mutate(f)
			}

			s, err := NewScanner(context.Background(), tt.cfg, f, f, nil, &recordingLogger{})
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, ErrSetup)
			assert.Equal(t, apperror.CodeSetupFailed, apperror.GetCode(err))
		})
	}
}

func TestNewScanner_SetupErrorKeepsCause(t *testing.T) {
	f := scenarioMarkets()
	f.listErr[mY] = apperror.New(apperror.CodeMarketUnavailable, apperror.WithContext("Y"))

	_, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeMarketUnavailable))
}

func TestNewScanner_NilCapabilities(t *testing.T) {
	f := scenarioMarkets()

	_, err := NewScanner(context.Background(), scannerConfig("0.007"), nil, f, nil, &recordingLogger{})
	assert.ErrorIs(t, err, ErrSetup)

	_, err = NewScanner(context.Background(), scannerConfig("0.007"), f, nil, nil, &recordingLogger{})
	assert.ErrorIs(t, err, ErrSetup)
}

func TestScanner_TickNotifiesAboveThreshold(t *testing.T) {
	f := scenarioMarkets()
	f.setBook(mX, "B", "100", "101")
	f.setBook(mY, "B", "108", "109")
	n := &recordingNotifier{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, n, &recordingLogger{})
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)

	require.Len(t, notes, 1)
	assert.Equal(t, domain.DirectionBuy1Sell2, notes[0].Direction)
	assert.Equal(t, mX, notes[0].BuyMarket)
	assert.Equal(t, mY, notes[0].SellMarket)
	assert.Equal(t, "0.06931", domain.FormatRatio(notes[0].Ratio))
	assert.Equal(t, []string{"B: Buy@1 & Sell@2: 0.06931"}, n.messages())
}

func TestScanner_TickLookupOrder(t *testing.T) {
	f := scenarioMarkets()
	f.setBook(mX, "B", "100", "101")
	f.setBook(mY, "B", "100", "101")

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	_, err = s.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []lookupCall{
		{mX, "B", marketDomain.SideBid},
		{mX, "B", marketDomain.SideAsk},
		{mY, "B", marketDomain.SideBid},
		{mY, "B", marketDomain.SideAsk},
	}, f.lookups())
}

func TestScanner_TickBothDirections(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"P"}
	f.lists[mY] = []marketDomain.Pair{"P"}
	// Crossed books: both directions show a profit.
	f.setBook(mX, "P", "110", "100")
	f.setBook(mY, "P", "110", "100")
	n := &recordingNotifier{}

	s, err := NewScanner(context.Background(), scannerConfig("0.05"), f, f, n, &recordingLogger{})
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, []string{"P: Buy@1 & Sell@2: 0.10000", "P: Buy@2 & Sell@1: 0.10000"}, n.messages())
}

func TestScanner_ThresholdIsStrict(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"P"}
	f.lists[mY] = []marketDomain.Pair{"P"}
	// bid(Y)/ask(X) - 1 = 101/100 - 1 = 0.01 exactly.
	f.setBook(mX, "P", "1", "100")
	f.setBook(mY, "P", "101", "1000")

	equal, err := NewScanner(context.Background(), scannerConfig("0.01"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)
	notes, err := equal.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes, "ratio equal to threshold must not notify")

	below, err := NewScanner(context.Background(), scannerConfig("0.00999999"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)
	notes, err = below.Tick(context.Background())
	require.NoError(t, err)
	assert.Len(t, notes, 1, "ratio one unit above threshold notifies")
}

func TestScanner_NoLiquiditySkipsPairOnly(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"C", "D"}
	f.lists[mY] = []marketDomain.Pair{"C", "D"}
	f.setBook(mX, "C", "100", "101")
	f.setBook(mY, "C", "108", "109")
	f.setBook(mX, "D", "100", "101")
	f.setBook(mY, "D", "108", "109")
	f.failOn[lookupCall{mY, "C", marketDomain.SideAsk}] = apperror.NoLiquidity("Y C ask", nil)
	n := &recordingNotifier{}
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, n, log)
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"D: Buy@1 & Sell@2: 0.06931"}, n.messages())
	require.Len(t, notes, 1)
	assert.Equal(t, marketDomain.Pair("D"), notes[0].Pair)
	assert.True(t, log.has("INFO", "C has no bid or ask order book"))
}

func TestScanner_LookupCountStopsAtFailure(t *testing.T) {
	f := newFakeMarkets()
	pairs := []marketDomain.Pair{"P1", "P2", "P3"}
	f.lists[mX] = pairs
	f.lists[mY] = pairs
	for _, p := range pairs {
		f.setBook(mX, p, "100", "101")
		f.setBook(mY, p, "100", "101")
	}
	// Lookup 2 of 4 (ask on market 1) fails for P2.
	f.failOn[lookupCall{mX, "P2", marketDomain.SideAsk}] = apperror.NoLiquidity("X P2 ask", nil)

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	_, err = s.Tick(context.Background())
	require.NoError(t, err)

	calls := f.lookups()
	assert.Len(t, calls, 4+2+4)
	for _, c := range calls {
		if c.Pair == "P2" {
			assert.Equal(t, mX, c.Market, "no market 2 lookups after the failure")
		}
	}
	assert.Equal(t, marketDomain.Pair("P3"), calls[len(calls)-1].Pair, "later pairs still scanned")
}

func TestScanner_OtherLookupErrorsSkipPair(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"E", "F"}
	f.lists[mY] = []marketDomain.Pair{"E", "F"}
	f.setBook(mX, "F", "100", "101")
	f.setBook(mY, "F", "108", "109")
	f.failOn[lookupCall{mX, "E", marketDomain.SideBid}] = apperror.New(apperror.CodeServiceTimeout)
	n := &recordingNotifier{}
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, n, log)
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, marketDomain.Pair("F"), notes[0].Pair)
	assert.True(t, log.has("WARN", "quote lookup failed"))
}

func TestScanner_NonPositiveAskIsNoLiquidity(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"Z"}
	f.lists[mY] = []marketDomain.Pair{"Z"}
	f.setBook(mX, "Z", "100", "0")
	f.setBook(mY, "Z", "108", "109")
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, log)
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.Len(t, f.lookups(), 2)
	assert.True(t, log.has("INFO", "Z has no bid or ask order book"))
}

func TestScanner_TickIsIdempotent(t *testing.T) {
	f := scenarioMarkets()
	f.setBook(mX, "B", "100", "101")
	f.setBook(mY, "B", "108", "109")

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	first, err := s.Tick(context.Background())
	require.NoError(t, err)
	firstCalls := f.lookups()
	f.resetCalls()

	second, err := s.Tick(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Message(), second[i].Message())
		assert.Equal(t, first[i].Direction, second[i].Direction)
		assert.True(t, first[i].Ratio.Equal(second[i].Ratio))
	}
	assert.Equal(t, firstCalls, f.lookups())
}

func TestScanner_NotifierErrorDoesNotAbort(t *testing.T) {
	f := newFakeMarkets()
	f.lists[mX] = []marketDomain.Pair{"P1", "P2"}
	f.lists[mY] = []marketDomain.Pair{"P1", "P2"}
	for _, p := range []marketDomain.Pair{"P1", "P2"} {
		f.setBook(mX, p, "100", "101")
		f.setBook(mY, p, "108", "109")
	}
	n := &recordingNotifier{err: errors.New("telegram down")}
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, n, log)
	require.NoError(t, err)

	notes, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	assert.Equal(t, 2, n.calls)
	assert.True(t, log.has("ERROR", "notification delivery failed"))
}

func TestScanner_CancelledContextAborts(t *testing.T) {
	f := scenarioMarkets()
	f.setBook(mX, "B", "100", "101")
	f.setBook(mY, "B", "108", "109")

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, &recordingLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notes, err := s.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, notes)
	assert.Empty(t, f.lookups())
}

func TestScanner_LogsHeaderEveryTick(t *testing.T) {
	f := scenarioMarkets()
	f.setBook(mX, "B", "100", "101")
	f.setBook(mY, "B", "100", "101")
	log := &recordingLogger{}

	s, err := NewScanner(context.Background(), scannerConfig("0.007"), f, f, nil, log)
	require.NoError(t, err)
	_, err = s.Tick(context.Background())
	require.NoError(t, err)

	assert.True(t, log.has("INFO", "Exchange_1: X; Exchange_2: Y"))
}
