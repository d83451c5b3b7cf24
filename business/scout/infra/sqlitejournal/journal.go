// Package sqlitejournal records notifications in a SQLite database.
package sqlitejournal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	marketDomain "github.com/fd1az/arbitrage-scout/business/market/domain"
	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

const defaultListLimit = 20

// Journal is an append-only notification log.
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, journalError("create dir "+dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, journalError("open "+path, err)
	}
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrate(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  pair TEXT NOT NULL,
  direction TEXT NOT NULL,
  buy_market TEXT NOT NULL,
  sell_market TEXT NOT NULL,
  ratio TEXT NOT NULL,
  message TEXT NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_ts ON notifications(ts_ms);
CREATE INDEX IF NOT EXISTS idx_notifications_pair ON notifications(pair);
`)
	if err != nil {
		return journalError("migrate", err)
	}
	return nil
}

// Notify appends n. It satisfies the scanner's notifier port.
func (j *Journal) Notify(ctx context.Context, n domain.Notification) error {
	return j.Append(ctx, n)
}

// Append stores n. The ratio keeps full precision.
func (j *Journal) Append(ctx context.Context, n domain.Notification) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO notifications(id, pair, direction, buy_market, sell_market, ratio, message, ts_ms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.Pair.String(), string(n.Direction), n.BuyMarket.String(), n.SellMarket.String(),
		n.Ratio.String(), n.Message(), n.Timestamp.UnixMilli())
	if err != nil {
		return journalError("insert "+n.ID, err)
	}
	return nil
}

// List returns the most recent notifications, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, pair, direction, buy_market, sell_market, ratio, ts_ms
		FROM notifications
		ORDER BY ts_ms DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, journalError("query", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n                         domain.Notification
			pair, dir, buy, sell, rat string
			tsMs                      int64
		)
		if err := rows.Scan(&n.ID, &pair, &dir, &buy, &sell, &rat, &tsMs); err != nil {
			return nil, journalError("scan", err)
		}
		ratio, err := decimal.NewFromString(rat)
		if err != nil {
			return nil, journalError("ratio of "+n.ID, err)
		}
		n.Pair = marketDomain.Pair(pair)
		n.Direction = domain.Direction(dir)
		n.BuyMarket = marketDomain.MarketID(buy)
		n.SellMarket = marketDomain.MarketID(sell)
		n.Ratio = ratio
		n.Timestamp = time.UnixMilli(tsMs)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, journalError("rows", err)
	}
	return out, nil
}

// Count returns the number of stored notifications.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`).Scan(&n); err != nil {
		return 0, journalError("count", err)
	}
	return n, nil
}

func (j *Journal) Close() error { return j.db.Close() }

func journalError(context string, cause error) error {
	return apperror.New(apperror.CodeJournalWriteFailed,
		apperror.WithContext(context),
		apperror.WithCause(cause))
}
