// Package lognotify turns notifications into structured log records.
package lognotify

import (
	"context"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

// Notifier logs every notification at info level.
type Notifier struct {
	logger logger.LoggerInterface
}

// NewNotifier creates a Notifier.
func NewNotifier(log logger.LoggerInterface) *Notifier {
	return &Notifier{logger: log}
}

func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	n.logger.Info(ctx, note.Message(),
		"id", note.ID,
		"pair", note.Pair,
		"direction", note.Direction,
		"buy_market", note.BuyMarket,
		"sell_market", note.SellMarket,
		"ratio", domain.FormatRatio(note.Ratio),
	)
	return nil
}
