package market

import (
	"context"
	"io"
	"testing"
	"time"

	marketDI "github.com/fd1az/arbitrage-scout/business/market/di"
	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/monolith"
)

func testConfig() *config.Config {
	return &config.Config{
		Scout: config.ScoutConfig{
			Markets:          []string{"paper_a", config.MarketGateIO},
			MinProfitability: "0.007",
			TickInterval:     time.Second,
		},
		GateIO: config.GateIOConfig{RestURL: "https://api.gateio.ws", RequestTimeout: time.Second},
		Paper: config.PaperConfig{Markets: map[string]map[string]config.PaperQuote{
			"paper_a": {"btc-usdt": {Bid: "1", Ask: "2"}},
		}},
	}
}

func TestNewConnector(t *testing.T) {
	cfg := testConfig()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)

	c, err := NewConnector(cfg, "paper_a", log)
	if err != nil {
		t.Fatalf("paper: %v", err)
	}
	if c.Name() != "paper_a" {
		t.Errorf("Name = %s", c.Name())
	}

	if _, err := NewConnector(cfg, config.MarketGateIO, log); err != nil {
		t.Errorf("gate_io: %v", err)
	}

	_, err = NewConnector(cfg, "kraken", log)
	if !apperror.HasCode(err, apperror.CodeMarketNotFound) {
		t.Errorf("unknown err = %v, want MARKET_NOT_FOUND", err)
	}
}

func TestModule_RegistersMarketService(t *testing.T) {
	cfg := testConfig()
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	mono := monolith.New(cfg, log)

	mod := &Module{}
	if err := mono.RegisterModules(mod); err != nil {
		t.Fatalf("RegisterModules: %v", err)
	}
	if err := mono.StartModules(context.Background(), mod); err != nil {
		t.Fatalf("StartModules: %v", err)
	}
	defer mono.Close()

	svc := marketDI.GetMarketService(mono.Services())
	got := svc.Markets()
	if len(got) != 2 || got[0] != config.MarketGateIO || got[1] != "paper_a" {
		t.Errorf("markets = %v", got)
	}

	pairs, err := svc.ListPairs(context.Background(), "paper_a")
	if err != nil || len(pairs) != 1 || pairs[0] != domain.Pair("BTC-USDT") {
		t.Errorf("pairs = %v, err = %v", pairs, err)
	}
}
