// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/arbitrage-scout/business/market/app"
	"github.com/fd1az/arbitrage-scout/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.MarketService]("market.MarketService")
)

// GetMarketService resolves the market service.
func GetMarketService(c di.ServiceRegistry) *app.MarketService {
	return di.GetToken(c, MarketService)
}
