package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fd1az/arbitrage-scout/internal/logger"
)

func newTestServer() *Server {
	return NewServer(0, "test", logger.New(io.Discard, logger.LevelError, "", nil))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth_AllChecksPass(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("scanner", func(context.Context) (bool, string) { return true, "3 pairs" })

	rec := get(t, s.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var status Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Status != "ok" || !status.Checks["scanner"].Healthy {
		t.Errorf("status = %+v", status)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestHealth_FailingCheckDegrades(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("scanner", func(context.Context) (bool, string) { return true, "" })
	s.RegisterCheck("last_tick", func(context.Context) (bool, string) { return false, "no tick yet" })

	if rec := get(t, s.Handler(), "/health"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/health status = %d", rec.Code)
	}
	if rec := get(t, s.Handler(), "/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready status = %d", rec.Code)
	}
	if rec := get(t, s.Handler(), "/live"); rec.Code != http.StatusOK {
		t.Errorf("/live status = %d", rec.Code)
	}
}

func TestHeartbeat_Check(t *testing.T) {
	var hb Heartbeat
	check := hb.Check(50 * time.Millisecond)

	if ok, _ := check(context.Background()); ok {
		t.Error("expected unhealthy before first beat")
	}

	hb.Beat()
	if ok, msg := check(context.Background()); !ok {
		t.Errorf("expected healthy right after beat: %s", msg)
	}

	hb.last.Store(time.Now().Add(-time.Second).UnixNano())
	if ok, _ := check(context.Background()); ok {
		t.Error("expected unhealthy for stale beat")
	}
}
