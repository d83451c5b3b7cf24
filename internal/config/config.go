// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// Market identifiers understood by the market module.
const (
	MarketBinance = "binance"
	MarketGateIO  = "gate_io"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Scout     ScoutConfig     `mapstructure:"scout"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	GateIO    GateIOConfig    `mapstructure:"gateio"`
	Paper     PaperConfig     `mapstructure:"paper"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// ScoutConfig configures the spread scanner and its runner.
type ScoutConfig struct {
	// Markets holds exactly two market ids: market 1 and market 2.
	Markets          []string      `mapstructure:"markets" validate:"len=2,dive,required"`
	MinProfitability string        `mapstructure:"min_profitability" validate:"required"`
	TickInterval     time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	TUIMode          bool          `mapstructure:"-"` // set at runtime by the CLI
}

// Market1 returns the first configured market.
func (c *ScoutConfig) Market1() string { return c.Markets[0] }

// Market2 returns the second configured market.
func (c *ScoutConfig) Market2() string { return c.Markets[1] }

// MinProfitabilityDecimal parses the threshold.
func (c *ScoutConfig) MinProfitabilityDecimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.MinProfitability))
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("scout.min_profitability"),
			apperror.WithCause(err))
	}
	return d, nil
}

// BinanceConfig holds Binance API configuration.
type BinanceConfig struct {
	RestURL           string        `mapstructure:"rest_url" validate:"required,url"`
	WebSocketURL      string        `mapstructure:"websocket_url" validate:"omitempty,url"` // wss://stream.binance.com:9443/ws
	UseWebSocket      bool          `mapstructure:"use_websocket"`
	StaleTimeout      time.Duration `mapstructure:"stale_timeout"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" validate:"gte=0"`
	QuoteAssets       []string      `mapstructure:"quote_assets"` // empty = all
}

// GateIOConfig holds Gate.io API configuration.
type GateIOConfig struct {
	RestURL           string        `mapstructure:"rest_url" validate:"required,url"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	QuoteAssets       []string      `mapstructure:"quote_assets"`
}

// PaperConfig defines in-memory markets keyed by market id. Each book maps
// a pair to its bid and ask.
type PaperConfig struct {
	Markets map[string]map[string]PaperQuote `mapstructure:"markets"`
}

// PaperQuote is a static top of book.
type PaperQuote struct {
	Bid string `mapstructure:"bid"`
	Ask string `mapstructure:"ask"`
}

// NotifyConfig selects and configures notification sinks.
type NotifyConfig struct {
	Console  ConsoleNotifyConfig  `mapstructure:"console"`
	Telegram TelegramNotifyConfig `mapstructure:"telegram"`
	Redis    RedisNotifyConfig    `mapstructure:"redis"`
	SQLite   SQLiteNotifyConfig   `mapstructure:"sqlite"`
}

// ConsoleNotifyConfig configures the stdout sink.
type ConsoleNotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// TelegramNotifyConfig configures the Telegram Bot API sink.
type TelegramNotifyConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	APIURL          string        `mapstructure:"api_url" validate:"omitempty,url"`
	BotToken        string        `mapstructure:"bot_token" validate:"required_if=Enabled true"`
	ChatIDs         []string      `mapstructure:"chat_ids"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MessagesPerChat float64       `mapstructure:"messages_per_chat_per_second"`
}

// RedisNotifyConfig configures the Redis stream/pubsub sink.
type RedisNotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len" validate:"gte=0"`
	Channel  string `mapstructure:"channel"`
}

// SQLiteNotifyConfig configures the notification journal.
type SQLiteNotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	Exporter       string  `mapstructure:"exporter" validate:"omitempty,oneof=stdout zipkin otlp-grpc otlp-http"`
	Endpoint       string  `mapstructure:"endpoint"`
	Probability    float64 `mapstructure:"probability" validate:"gte=0,lte=1"`
	PrometheusPort int     `mapstructure:"prometheus_port" validate:"gte=0,lte=65535"`
}

// HealthConfig configures the health HTTP server.
type HealthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Port       int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	MaxTickAge time.Duration `mapstructure:"max_tick_age"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("read config"),
				apperror.WithCause(err))
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("unmarshal config"),
			apperror.WithCause(err))
	}

	// Env vars arrive as a single comma-separated string.
	cfg.Scout.Markets = splitList(cfg.Scout.Markets)
	cfg.Notify.Telegram.ChatIDs = splitList(cfg.Notify.Telegram.ChatIDs)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SCOUT_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SCOUT_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SCOUT_LOG_LEVEL", "LOG_LEVEL")

	// Scout
	v.BindEnv("scout.markets", "SCOUT_MARKETS")
	v.BindEnv("scout.min_profitability", "SCOUT_MIN_PROFITABILITY")
	v.BindEnv("scout.tick_interval", "SCOUT_TICK_INTERVAL")

	// Exchanges
	v.BindEnv("binance.rest_url", "SCOUT_BINANCE_REST_URL", "BINANCE_REST_URL")
	v.BindEnv("binance.websocket_url", "SCOUT_BINANCE_WS_URL", "BINANCE_WS_URL")
	v.BindEnv("binance.use_websocket", "SCOUT_BINANCE_USE_WS")
	v.BindEnv("gateio.rest_url", "SCOUT_GATEIO_REST_URL", "GATEIO_REST_URL")

	// Notifiers
	v.BindEnv("notify.telegram.enabled", "SCOUT_TELEGRAM_ENABLED")
	v.BindEnv("notify.telegram.bot_token", "SCOUT_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("notify.telegram.chat_ids", "SCOUT_TELEGRAM_CHAT_IDS", "TELEGRAM_CHAT_IDS")
	v.BindEnv("notify.redis.enabled", "SCOUT_REDIS_ENABLED")
	v.BindEnv("notify.redis.addr", "SCOUT_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("notify.redis.password", "SCOUT_REDIS_PASSWORD", "REDIS_PASSWORD")
	v.BindEnv("notify.sqlite.enabled", "SCOUT_SQLITE_ENABLED")
	v.BindEnv("notify.sqlite.path", "SCOUT_SQLITE_PATH")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SCOUT_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SCOUT_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.endpoint", "SCOUT_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arbitrage-scout")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	// Scout defaults
	v.SetDefault("scout.markets", []string{MarketGateIO, MarketBinance})
	v.SetDefault("scout.min_profitability", "0.007")
	v.SetDefault("scout.tick_interval", "1s")

	// Binance defaults
	v.SetDefault("binance.rest_url", "https://api.binance.com")
	v.SetDefault("binance.websocket_url", "wss://stream.binance.com:9443/ws")
	v.SetDefault("binance.use_websocket", false)
	v.SetDefault("binance.stale_timeout", "5s")
	v.SetDefault("binance.request_timeout", "10s")
	v.SetDefault("binance.requests_per_minute", 1200)

	// Gate.io defaults
	v.SetDefault("gateio.rest_url", "https://api.gateio.ws")
	v.SetDefault("gateio.request_timeout", "10s")
	v.SetDefault("gateio.requests_per_second", 10)

	// Notifier defaults
	v.SetDefault("notify.console.enabled", true)
	v.SetDefault("notify.telegram.api_url", "https://api.telegram.org")
	v.SetDefault("notify.telegram.request_timeout", "10s")
	v.SetDefault("notify.telegram.messages_per_chat_per_second", 1)
	v.SetDefault("notify.redis.addr", "localhost:6379")
	v.SetDefault("notify.redis.stream", "scout:notifications")
	v.SetDefault("notify.redis.max_len", 10000)
	v.SetDefault("notify.redis.channel", "scout.notifications")
	v.SetDefault("notify.sqlite.path", "scout.db")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arbitrage-scout")
	v.SetDefault("telemetry.exporter", "stdout")
	v.SetDefault("telemetry.probability", 1.0)
	v.SetDefault("telemetry.prometheus_port", 9090)

	// Health defaults
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8080)
	v.SetDefault("health.max_tick_age", "30s")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(describeValidation(err)),
			apperror.WithCause(err))
	}

	if c.Scout.Markets[0] == c.Scout.Markets[1] {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("scout.markets must name two different markets"))
	}

	threshold, err := c.Scout.MinProfitabilityDecimal()
	if err != nil {
		return err
	}
	if threshold.IsNegative() {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("scout.min_profitability must not be negative"))
	}

	if c.Notify.Telegram.Enabled && len(c.Notify.Telegram.ChatIDs) == 0 {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("notify.telegram.chat_ids is required when telegram is enabled"))
	}

	for market, book := range c.Paper.Markets {
		for pair, q := range book {
			if _, err := decimal.NewFromString(q.Bid); err != nil {
				return apperror.New(apperror.CodeConfigurationError,
					apperror.WithContext(fmt.Sprintf("paper.markets.%s.%s.bid", market, pair)),
					apperror.WithCause(err))
			}
			if _, err := decimal.NewFromString(q.Ask); err != nil {
				return apperror.New(apperror.CodeConfigurationError,
					apperror.WithContext(fmt.Sprintf("paper.markets.%s.%s.ask", market, pair)),
					apperror.WithCause(err))
			}
		}
	}

	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return "invalid " + strings.Join(fields, ", ")
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
