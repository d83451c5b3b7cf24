package market

import (
	"github.com/fd1az/arbitrage-scout/business/market/app"
	"github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/market/infra/binance"
	"github.com/fd1az/arbitrage-scout/business/market/infra/gateio"
	"github.com/fd1az/arbitrage-scout/business/market/infra/paper"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

// NewConnector builds the connector for market id. Paper books take
// precedence so a paper market may shadow an exchange name in tests.
func NewConnector(cfg *config.Config, id string, log logger.LoggerInterface) (app.Connector, error) {
	if book, ok := cfg.Paper.Markets[id]; ok {
		return paper.FromConfig(domain.MarketID(id), book)
	}

	switch id {
	case config.MarketBinance:
		return binance.NewConnector(binance.ConnectorConfig{
			Name:              domain.MarketID(id),
			RestURL:           cfg.Binance.RestURL,
			WebSocketURL:      cfg.Binance.WebSocketURL,
			UseWebSocket:      cfg.Binance.UseWebSocket,
			StaleTimeout:      cfg.Binance.StaleTimeout,
			RequestTimeout:    cfg.Binance.RequestTimeout,
			RequestsPerMinute: cfg.Binance.RequestsPerMinute,
			QuoteAssets:       cfg.Binance.QuoteAssets,
		}, log)
	case config.MarketGateIO:
		return gateio.NewConnector(gateio.Config{
			Name:              domain.MarketID(id),
			RestURL:           cfg.GateIO.RestURL,
			RequestTimeout:    cfg.GateIO.RequestTimeout,
			RequestsPerSecond: cfg.GateIO.RequestsPerSecond,
			QuoteAssets:       cfg.GateIO.QuoteAssets,
		}, log)
	}

	return nil, apperror.New(apperror.CodeMarketNotFound,
		apperror.WithContext(id),
		apperror.WithMessage("no connector for market; configure it under paper.markets"))
}

// NewConnectors builds one connector per distinct id.
func NewConnectors(cfg *config.Config, ids []string, log logger.LoggerInterface) ([]app.Connector, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]app.Connector, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		c, err := NewConnector(cfg, id, log)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
