// Package market implements the market bounded context: exchange
// connectors behind a single lookup service.
package market

import (
	"context"

	"github.com/fd1az/arbitrage-scout/business/market/app"
	marketDI "github.com/fd1az/arbitrage-scout/business/market/di"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/di"
	"github.com/fd1az/arbitrage-scout/internal/logger"
	"github.com/fd1az/arbitrage-scout/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices builds the connectors for the configured markets and
// registers the MarketService. Connector construction errors are returned
// here rather than on first use.
func (m *Module) RegisterServices(c di.Container) error {
	cfg := c.Get("config").(*config.Config)
	log := c.Get("logger").(logger.LoggerInterface)

	connectors, err := NewConnectors(cfg, cfg.Scout.Markets, log)
	if err != nil {
		return err
	}

	di.RegisterValue(c, marketDI.MarketService, app.NewMarketService(connectors...))
	return nil
}

// Startup registers connector shutdown.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	svc := marketDI.GetMarketService(mono.Services())
	mono.OnClose(svc.Close)

	mono.Logger().Info(ctx, "market module started", "markets", svc.Markets())
	return nil
}
