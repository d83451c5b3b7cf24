// Package di contains dependency injection tokens for the scout context.
package di

import (
	"github.com/fd1az/arbitrage-scout/business/scout/app"
	"github.com/fd1az/arbitrage-scout/internal/di"
	"github.com/fd1az/arbitrage-scout/internal/health"
)

var (
	Notifier  = di.NewToken[*app.MultiNotifier]("scout.Notifier")
	Heartbeat = di.NewToken[*health.Heartbeat]("scout.Heartbeat")
)

// GetNotifier resolves the notification fan-out.
func GetNotifier(c di.ServiceRegistry) *app.MultiNotifier {
	return di.GetToken(c, Notifier)
}

// GetHeartbeat resolves the tick heartbeat.
func GetHeartbeat(c di.ServiceRegistry) *health.Heartbeat {
	return di.GetToken(c, Heartbeat)
}
