package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
)

type lookupCall struct {
	Market marketDomain.MarketID
	Pair   marketDomain.Pair
	Side   marketDomain.Side
}

// fakeMarkets implements PairLister and PriceLookup from in-memory books.
type fakeMarkets struct {
	mu       sync.Mutex
	lists    map[marketDomain.MarketID][]marketDomain.Pair
	listErr  map[marketDomain.MarketID]error
	prices   map[lookupCall]string
	failOn   map[lookupCall]error
	calls    []lookupCall
	listHits []marketDomain.MarketID
}

func newFakeMarkets() *fakeMarkets {
	return &fakeMarkets{
		lists:   make(map[marketDomain.MarketID][]marketDomain.Pair),
		listErr: make(map[marketDomain.MarketID]error),
		prices:  make(map[lookupCall]string),
		failOn:  make(map[lookupCall]error),
	}
}

func (f *fakeMarkets) setBook(market marketDomain.MarketID, pair marketDomain.Pair, bid, ask string) {
	f.prices[lookupCall{market, pair, marketDomain.SideBid}] = bid
	f.prices[lookupCall{market, pair, marketDomain.SideAsk}] = ask
}

func (f *fakeMarkets) ListPairs(_ context.Context, market marketDomain.MarketID) ([]marketDomain.Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listHits = append(f.listHits, market)
	if err := f.listErr[market]; err != nil {
		return nil, err
	}
	return f.lists[market], nil
}

func (f *fakeMarkets) GetPrice(_ context.Context, market marketDomain.MarketID, pair marketDomain.Pair, side marketDomain.Side) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := lookupCall{market, pair, side}
	f.calls = append(f.calls, call)
	if err := f.failOn[call]; err != nil {
		return decimal.Zero, err
	}
	p, ok := f.prices[call]
	if !ok {
		return decimal.Zero, fmt.Errorf("no price for %v", call)
	}
	return decimal.RequireFromString(p), nil
}

func (f *fakeMarkets) lookups() []lookupCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]lookupCall(nil), f.calls...)
}

func (f *fakeMarkets) resetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// recordingNotifier keeps every delivered notification.
type recordingNotifier struct {
	mu    sync.Mutex
	got   []domain.Notification
	err   error
	calls int
}

func (r *recordingNotifier) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, n)
	return nil
}

func (r *recordingNotifier) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Message()
	}
	return out
}

// recordingLogger captures log messages by level.
type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) add(level, msg string) {
	l.mu.Lock()
	l.entries = append(l.entries, level+": "+msg)
	l.mu.Unlock()
}

func (l *recordingLogger) has(level, substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.HasPrefix(e, level+": ") && strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func (l *recordingLogger) Debug(_ context.Context, msg string, _ ...any)         { l.add("DEBUG", msg) }
func (l *recordingLogger) Info(_ context.Context, msg string, _ ...any)          { l.add("INFO", msg) }
func (l *recordingLogger) Warn(_ context.Context, msg string, _ ...any)          { l.add("WARN", msg) }
func (l *recordingLogger) Error(_ context.Context, msg string, _ ...any)         { l.add("ERROR", msg) }
func (l *recordingLogger) Debugc(_ context.Context, _ int, msg string, _ ...any) { l.add("DEBUG", msg) }
func (l *recordingLogger) Infoc(_ context.Context, _ int, msg string, _ ...any)  { l.add("INFO", msg) }
func (l *recordingLogger) Warnc(_ context.Context, _ int, msg string, _ ...any)  { l.add("WARN", msg) }
func (l *recordingLogger) Errorc(_ context.Context, _ int, msg string, _ ...any) { l.add("ERROR", msg) }
