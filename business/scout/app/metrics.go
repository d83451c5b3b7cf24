package app

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "scout"

// scannerMetrics holds OTEL metric instruments.
type scannerMetrics struct {
	ticks         metric.Int64Counter
	lookups       metric.Int64Counter
	skipped       metric.Int64Counter
	notifications metric.Int64Counter
	notifyErrors  metric.Int64Counter
	tickDuration  metric.Float64Histogram
}

func newScannerMetrics() (*scannerMetrics, error) {
	meter := otel.Meter(meterName)
	m := &scannerMetrics{}
	var err error

	m.ticks, err = meter.Int64Counter(
		"scout_ticks_total",
		metric.WithDescription("Completed scanner ticks"),
	)
	if err != nil {
		return nil, err
	}

	m.lookups, err = meter.Int64Counter(
		"scout_quote_lookups_total",
		metric.WithDescription("Quote lookups performed"),
	)
	if err != nil {
		return nil, err
	}

	m.skipped, err = meter.Int64Counter(
		"scout_pairs_skipped_total",
		metric.WithDescription("Pairs skipped for a tick after a failed lookup"),
	)
	if err != nil {
		return nil, err
	}

	m.notifications, err = meter.Int64Counter(
		"scout_notifications_total",
		metric.WithDescription("Notifications produced"),
	)
	if err != nil {
		return nil, err
	}

	m.notifyErrors, err = meter.Int64Counter(
		"scout_notify_errors_total",
		metric.WithDescription("Notification delivery failures"),
	)
	if err != nil {
		return nil, err
	}

	m.tickDuration, err = meter.Float64Histogram(
		"scout_tick_duration_ms",
		metric.WithDescription("Scanner tick latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
