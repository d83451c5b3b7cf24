package scout

import (
	"context"
	"io"

	"github.com/fd1az/arbitrage-scout/business/scout/app"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/console"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/lognotify"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/redisstream"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/sqlitejournal"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/telegram"
	"github.com/fd1az/arbitrage-scout/business/scout/infra/tui"
	"github.com/fd1az/arbitrage-scout/internal/config"
	"github.com/fd1az/arbitrage-scout/internal/logger"
)

// sinks holds the notifiers the module needs to talk to after setup.
type sinks struct {
	fanout  *app.MultiNotifier
	console *console.Notifier
	dash    *tui.Notifier
}

// newSinks builds the notifiers that need no I/O. In TUI mode the
// dashboard replaces the console; with the console disabled notifications
// go to the log.
func newSinks(cfg *config.Config, out io.Writer, log logger.LoggerInterface) (*sinks, error) {
	s := &sinks{fanout: app.NewMultiNotifier()}

	switch {
	case cfg.Scout.TUIMode:
		s.dash = tui.NewNotifier()
		s.fanout.Add(s.dash)
	case cfg.Notify.Console.Enabled:
		s.console = console.NewNotifier(out)
		s.fanout.Add(s.console)
	default:
		s.fanout.Add(lognotify.NewNotifier(log))
	}

	if tg := cfg.Notify.Telegram; tg.Enabled {
		n, err := telegram.NewNotifier(telegram.Config{
			APIURL:          tg.APIURL,
			BotToken:        tg.BotToken,
			ChatIDs:         tg.ChatIDs,
			RequestTimeout:  tg.RequestTimeout,
			MessagesPerChat: tg.MessagesPerChat,
		}, log)
		if err != nil {
			return nil, err
		}
		s.fanout.Add(n)
	}

	return s, nil
}

// openStores connects the Redis and SQLite sinks and returns their closers.
func openStores(ctx context.Context, cfg *config.Config, fanout *app.MultiNotifier) ([]func() error, error) {
	var closers []func() error

	if rc := cfg.Notify.Redis; rc.Enabled {
		r, err := redisstream.New(ctx, redisstream.Config{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
			Stream:   rc.Stream,
			Channel:  rc.Channel,
			MaxLen:   rc.MaxLen,
		})
		if err != nil {
			return closers, err
		}
		fanout.Add(r)
		closers = append(closers, r.Close)
	}

	if sc := cfg.Notify.SQLite; sc.Enabled {
		j, err := sqlitejournal.Open(ctx, sc.Path)
		if err != nil {
			return closers, err
		}
		fanout.Add(j)
		closers = append(closers, j.Close)
	}

	return closers, nil
}
