package sqlitejournal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "scout.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_AppendAndList(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	base := time.UnixMilli(1700000000000)
	first := domain.NewNotification("A-USDT", domain.DirectionBuy1Sell2, "X", "Y", decimal.RequireFromString("0.0101"), base)
	second := domain.NewNotification("B-USDT", domain.DirectionBuy2Sell1, "X", "Y", decimal.RequireFromString("0.0693069306930693"), base.Add(time.Second))

	for _, n := range []domain.Notification{first, second} {
		if err := j.Notify(ctx, n); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	got, err := j.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", got[0].Pair, got[1].Pair)
	}
	if !got[0].Ratio.Equal(second.Ratio) {
		t.Errorf("ratio = %s, want %s", got[0].Ratio, second.Ratio)
	}
	if got[0].BuyMarket != "Y" || got[0].SellMarket != "X" || got[0].Direction != domain.DirectionBuy2Sell1 {
		t.Errorf("row = %+v", got[0])
	}
	if got[0].Message() != second.Message() {
		t.Errorf("message = %q, want %q", got[0].Message(), second.Message())
	}
	if !got[0].Timestamp.Equal(second.Timestamp) {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}
}

func TestJournal_ListLimit(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		n := domain.NewNotification("P", domain.DirectionBuy1Sell2, "X", "Y", decimal.NewFromFloat(0.01), time.UnixMilli(int64(i)))
		if err := j.Append(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.List(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if total, _ := j.Count(ctx); total != 5 {
		t.Errorf("count = %d, want 5", total)
	}
}

func TestJournal_DuplicateIDIsWriteError(t *testing.T) {
	j := openTemp(t)
	ctx := context.Background()

	n := domain.NewNotification("P", domain.DirectionBuy1Sell2, "X", "Y", decimal.NewFromFloat(0.01), time.Now())
	if err := j.Append(ctx, n); err != nil {
		t.Fatal(err)
	}
	err := j.Append(ctx, n)
	if !apperror.HasCode(err, apperror.CodeJournalWriteFailed) {
		t.Errorf("err = %v, want JOURNAL_WRITE_FAILED", err)
	}
}

func TestJournal_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.db")
	ctx := context.Background()

	j, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	n := domain.NewNotification("P", domain.DirectionBuy1Sell2, "X", "Y", decimal.NewFromFloat(0.01), time.Now())
	if err := j.Append(ctx, n); err != nil {
		t.Fatal(err)
	}
	_ = j.Close()

	j, err = Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	if total, _ := j.Count(ctx); total != 1 {
		t.Errorf("count after reopen = %d, want 1", total)
	}
}
