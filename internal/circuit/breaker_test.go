package circuit

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(&Config{Enabled: true, MaxConsecutiveFails: 3, Cooldown: time.Minute})

	failure := errors.New("connection refused")
	b.RecordFailure(failure)
	b.RecordFailure(failure)
	if b.State() != StateClosed {
		t.Fatalf("state after 2 failures = %s, want closed", b.State())
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow while closed: %v", err)
	}

	b.RecordFailure(failure)
	if b.State() != StateOpen {
		t.Fatalf("state after 3 failures = %s, want open", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Errorf("Allow while open: err = %v, want ErrOpen", err)
	}
}

func TestBreakerSuccessResetsFailureRun(t *testing.T) {
	b := NewBreaker(&Config{Enabled: true, MaxConsecutiveFails: 2, Cooldown: time.Minute})

	b.RecordFailure(errors.New("timeout"))
	b.RecordSuccess()
	b.RecordFailure(errors.New("timeout"))
	if b.State() != StateClosed {
		t.Errorf("non-consecutive failures tripped the breaker")
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(&Config{Enabled: true, MaxConsecutiveFails: 1, Cooldown: 10 * time.Millisecond})

	b.RecordFailure(errors.New("timeout"))
	if err := b.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("Allow before cooldown: err = %v, want ErrOpen", err)
	}

	time.Sleep(15 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe after cooldown rejected: %v", err)
	}
	if b.State() != StateHalfOpen {
		t.Fatalf("state = %s, want half_open", b.State())
	}

	// Failed probe re-trips immediately.
	b.RecordFailure(errors.New("timeout"))
	if b.State() != StateOpen {
		t.Errorf("state after failed probe = %s, want open", b.State())
	}

	time.Sleep(15 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe rejected: %v", err)
	}
	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Errorf("state after successful probe = %s, want closed", b.State())
	}
}

func TestBreakerDisabled(t *testing.T) {
	b := NewBreaker(&Config{Enabled: false, MaxConsecutiveFails: 1, Cooldown: time.Minute})

	b.RecordFailure(errors.New("timeout"))
	b.RecordFailure(errors.New("timeout"))
	if err := b.Allow(); err != nil {
		t.Errorf("disabled breaker rejected a request: %v", err)
	}

	// Callbacks fire on trip and reset when enabled.
	tripped := ""
	reset := false
	eb := NewBreaker(&Config{Enabled: true, MaxConsecutiveFails: 1, Cooldown: time.Minute})
	eb.OnTrip(func(reason string) { tripped = reason })
	eb.OnReset(func() { reset = true })
	eb.RecordFailure(errors.New("timeout"))
	if tripped == "" {
		t.Error("OnTrip callback not fired")
	}
	eb.RecordSuccess()
	if !reset {
		t.Error("OnReset callback not fired")
	}
}
