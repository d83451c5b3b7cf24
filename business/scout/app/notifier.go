package app

import (
	"context"
	"errors"

	"github.com/fd1az/arbitrage-scout/business/scout/domain"
	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

// MultiNotifier fans a notification out to every sink. All sinks are
// attempted; their errors are joined.
type MultiNotifier struct {
	sinks []Notifier
}

// NewMultiNotifier creates a fan-out over sinks. Nil sinks are dropped.
func NewMultiNotifier(sinks ...Notifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add appends a sink.
func (m *MultiNotifier) Add(s Notifier) {
	if s != nil {
		m.sinks = append(m.sinks, s)
	}
}

// Len returns the number of sinks.
func (m *MultiNotifier) Len() int {
	return len(m.sinks)
}

// Notify delivers n to every sink.
func (m *MultiNotifier) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return apperror.New(apperror.CodeNotificationFailed,
		apperror.WithContext(n.Pair.String()),
		apperror.WithCause(errors.Join(errs...)))
}
