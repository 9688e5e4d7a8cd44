package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

func TestDisabledBreakerPassesThrough(t *testing.T) {
	b := New("upstream", Config{Enabled: false}, zerolog.Nop(), nil)

	calls := 0
	for i := 0; i < 20; i++ {
		_, err := b.Execute(func() (interface{}, error) {
			calls++
			return nil, errors.New("boom")
		})
		if err == nil {
			t.Fatal("expected error from fn")
		}
	}
	if calls != 20 {
		t.Errorf("calls = %d, want 20 (disabled breaker must never trip)", calls)
	}
	if b.State() != "disabled" {
		t.Errorf("State() = %q, want disabled", b.State())
	}
}

func TestBreakerTripsOnConsecutiveFailures(t *testing.T) {
	cfg := Config{
		Enabled:             true,
		MaxRequests:         1,
		Timeout:             time.Minute,
		ConsecutiveFailures: 3,
	}
	b := New("upstream", cfg, zerolog.Nop(), nil)

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (interface{}, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i+1, err)
		}
	}

	_, err := b.Execute(func() (interface{}, error) { return "ok", nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("err = %v, want ErrOpenState", err)
	}
	if b.State() != gobreaker.StateOpen.String() {
		t.Errorf("State() = %q, want open", b.State())
	}
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	b := New("upstream", DefaultConfig(), zerolog.Nop(), nil)

	for i := 0; i < 50; i++ {
		v, err := b.Execute(func() (interface{}, error) { return "ok", nil })
		if err != nil {
			t.Fatalf("call %d: err = %v", i+1, err)
		}
		if v != "ok" {
			t.Fatalf("call %d: value = %v", i+1, v)
		}
	}
	if b.State() != gobreaker.StateClosed.String() {
		t.Errorf("State() = %q, want closed", b.State())
	}
}
