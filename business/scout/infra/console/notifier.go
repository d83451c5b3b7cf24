// Package console prints notifications to a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
)

// Notifier writes one timestamped line per notification.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewNotifier creates a Notifier writing to out, or stdout when out is nil.
func NewNotifier(out io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	return &Notifier{out: out}
}

// Notify prints "[15:04:05] <message>".
func (n *Notifier) Notify(_ context.Context, note domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.out, "[%s] %s\n", note.Timestamp.Format(time.TimeOnly), note.Message())
	return err
}

// Banner prints the market header once at startup.
func (n *Notifier) Banner(market1, market2 string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	fmt.Fprintln(n.out, "Arbitrage Scout Started")
	fmt.Fprintln(n.out, "=======================")
	fmt.Fprintf(n.out, "Exchange_1: %s; Exchange_2: %s\n", market1, market2)
}
