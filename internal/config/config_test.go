package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.Scout.Markets; len(got) != 2 || got[0] != MarketGateIO || got[1] != MarketBinance {
		t.Errorf("markets = %v, want [gate_io binance]", got)
	}
	if cfg.Scout.TickInterval != time.Second {
		t.Errorf("tick interval = %v, want 1s", cfg.Scout.TickInterval)
	}
	threshold, err := cfg.Scout.MinProfitabilityDecimal()
	if err != nil {
		t.Fatalf("MinProfitabilityDecimal: %v", err)
	}
	if threshold.String() != "0.007" {
		t.Errorf("threshold = %s, want 0.007", threshold)
	}
	if !cfg.Notify.Console.Enabled {
		t.Error("console notifier should be enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCOUT_MARKETS", "binance, paper")
	t.Setenv("SCOUT_MIN_PROFITABILITY", "0.01")
	t.Setenv("SCOUT_TICK_INTERVAL", "250ms")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scout.Market1() != "binance" || cfg.Scout.Market2() != "paper" {
		t.Errorf("markets = %v", cfg.Scout.Markets)
	}
	if cfg.Scout.TickInterval != 250*time.Millisecond {
		t.Errorf("tick interval = %v", cfg.Scout.TickInterval)
	}
	if cfg.Scout.MinProfitability != "0.01" {
		t.Errorf("min_profitability = %q", cfg.Scout.MinProfitability)
	}
}

func TestLoad_YAMLWithPaperBooks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.yaml")
	yaml := `
scout:
  markets: [paper_x, paper_y]
  min_profitability: "0.005"
paper:
  markets:
    paper_x:
      BTC-USDT: {bid: "100", ask: "101"}
    paper_y:
      BTC-USDT: {bid: "108", ask: "109"}
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	book, ok := cfg.Paper.Markets["paper_y"]
	if !ok {
		t.Fatalf("paper_y missing: %v", cfg.Paper.Markets)
	}
	// viper lower-cases map keys
	q, ok := book["btc-usdt"]
	if !ok {
		t.Fatalf("btc-usdt missing: %v", book)
	}
	if q.Bid != "108" || q.Ask != "109" {
		t.Errorf("quote = %+v", q)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App: AppConfig{Name: "scout", LogLevel: "info"},
			Scout: ScoutConfig{
				Markets:          []string{"gate_io", "binance"},
				MinProfitability: "0.007",
				TickInterval:     time.Second,
			},
			Binance: BinanceConfig{RestURL: "https://api.binance.com", RequestTimeout: time.Second},
			GateIO:  GateIOConfig{RestURL: "https://api.gateio.ws", RequestTimeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"one market", func(c *Config) { c.Scout.Markets = []string{"binance"} }, true},
		{"same market twice", func(c *Config) { c.Scout.Markets = []string{"binance", "binance"} }, true},
		{"threshold not a number", func(c *Config) { c.Scout.MinProfitability = "abc" }, true},
		{"negative threshold", func(c *Config) { c.Scout.MinProfitability = "-0.1" }, true},
		{"zero threshold", func(c *Config) { c.Scout.MinProfitability = "0" }, false},
		{"zero interval", func(c *Config) { c.Scout.TickInterval = 0 }, true},
		{"bad log level", func(c *Config) { c.App.LogLevel = "loud" }, true},
		{"telegram without token", func(c *Config) {
			c.Notify.Telegram.Enabled = true
			c.Notify.Telegram.ChatIDs = []string{"1"}
		}, true},
		{"telegram without chats", func(c *Config) {
			c.Notify.Telegram.Enabled = true
			c.Notify.Telegram.BotToken = "t"
		}, true},
		{"bad paper quote", func(c *Config) {
			c.Paper.Markets = map[string]map[string]PaperQuote{"p": {"btc-usdt": {Bid: "x", Ask: "1"}}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && apperror.GetCode(err) != apperror.CodeConfigurationError {
				t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeConfigurationError)
			}
		})
	}
}
