package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		b.RecordFailure()
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("state after 2 failures = %s", b.State())
	}

	b.RecordFailure()
	if b.State() != CircuitStateOpen {
		t.Fatalf("state after threshold = %s", b.State())
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open circuit allowed request: %v", err)
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()

	if b.State() != CircuitStateClosed {
		t.Fatalf("interleaved success did not reset count, state = %s", b.State())
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	clock := time.Now()
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open circuit allowed request: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe request rejected: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("second probe exceeded half-open budget: %v", err)
	}

	b.RecordSuccess()
	if b.State() != CircuitStateClosed {
		t.Fatalf("successful probe did not close circuit, state = %s", b.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	clock := time.Now()
	b.now = func() time.Time { return clock }

	b.RecordFailure()
	clock = clock.Add(2 * time.Minute)
	if err := b.Allow(); err != nil {
		t.Fatalf("probe request rejected: %v", err)
	}

	b.RecordFailure()
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("failed probe did not reopen circuit: %v", err)
	}
}
