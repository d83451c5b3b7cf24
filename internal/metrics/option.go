package metrics

import (
	"github.com/fd1az/arbitrage-scout/internal/config"
)

type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	OtelCollector      Provider = "otelCollector"
)

type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

type ProviderCfg struct {
	Provider Provider
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

// FromTelemetry derives provider options from the telemetry config:
// Prometheus always, plus an OTLP collector when the exporter is otlp-grpc.
func FromTelemetry(cfg config.TelemetryConfig) []OptionFn {
	opts := []OptionFn{
		WithServiceName(cfg.ServiceName),
		WithProviderConfig(ProviderCfg{Provider: PrometheusProvider}),
	}
	if cfg.Exporter == "otlp-grpc" && cfg.Endpoint != "" {
		opts = append(opts, WithProviderConfig(ProviderCfg{
			Provider: OtelCollector,
			Endpoint: cfg.Endpoint,
		}))
	}
	return opts
}
