package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/arbitrage-scout/internal/apperror"
)

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Minute

	var transitions []gobreaker.State
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		transitions = append(transitions, to)
	}

	b := New[int](cfg)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.Execute(func() (int, error) { return 1, nil })
	if apperror.GetCode(err) != apperror.CodeCircuitOpen {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeCircuitOpen)
	}

	if len(transitions) != 1 || transitions[0] != gobreaker.StateOpen {
		t.Errorf("transitions = %v, want [open]", transitions)
	}
}

func TestBreaker_IsSuccessfulKeepsClosed(t *testing.T) {
	cfg := DefaultConfig("no-liquidity")
	cfg.FailureThreshold = 1
	cfg.IsSuccessful = func(err error) bool {
		return err == nil || apperror.HasCode(err, apperror.CodeNoLiquidity)
	}

	b := New[string](cfg)

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (string, error) {
			return "", apperror.New(apperror.CodeNoLiquidity)
		})
		if !apperror.HasCode(err, apperror.CodeNoLiquidity) {
			t.Fatalf("err = %v, want NO_LIQUIDITY passthrough", err)
		}
	}

	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
	if b.Name() != "no-liquidity" {
		t.Errorf("Name() = %q", b.Name())
	}
}
