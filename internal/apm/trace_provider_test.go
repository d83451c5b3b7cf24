package apm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fd1az/arbitrage-scout/internal/config"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any)       {}
func (nopLogger) Info(context.Context, string, ...any)        {}
func (nopLogger) Warn(context.Context, string, ...any)        {}
func (nopLogger) Error(context.Context, string, ...any)       {}
func (nopLogger) Debugc(context.Context, int, string, ...any) {}
func (nopLogger) Infoc(context.Context, int, string, ...any)  {}
func (nopLogger) Warnc(context.Context, int, string, ...any)  {}
func (nopLogger) Errorc(context.Context, int, string, ...any) {}

func TestNewTraceProvider_DisabledIsNoop(t *testing.T) {
	tp, err := NewTraceProvider(context.Background(), config.TelemetryConfig{Enabled: false}, nopLogger{})
	if err != nil {
		t.Fatalf("NewTraceProvider: %v", err)
	}
	if _, ok := tp.(emptyTraceProvider); !ok {
		t.Errorf("provider = %T, want emptyTraceProvider", tp)
	}
	if err := tp.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}

func TestStdoutExporter_WritesSpan(t *testing.T) {
	var buf bytes.Buffer
	exp, err := newExporter(context.Background(), ConsoleProvider, "", &buf)
	if err != nil {
		t.Fatalf("newExporter: %v", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	_, span := tp.Tracer("test").Start(context.Background(), "scout.tick")
	s := NewSpan(span)
	s.Fail(errors.New("lookup failed"))
	s.End()

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "scout.tick") {
		t.Errorf("expected span name in output, got %q", out)
	}
	if !strings.Contains(out, "lookup failed") {
		t.Errorf("expected recorded error in output, got %q", out)
	}
}
