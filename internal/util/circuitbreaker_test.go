package util

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(2, time.Minute, zap.NewNop()).WithClock(clock.Now)

	cb.RecordFailure(0)
	if !cb.Allow() {
		t.Fatalf("expected closed circuit after one failure")
	}
	cb.RecordFailure(0)
	if cb.Allow() {
		t.Fatalf("expected open circuit after threshold")
	}

	status := cb.Status()
	if status.State != CircuitStateOpen || status.NextRetryTime == nil {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestCircuitBreakerHalfOpenSingleProbe(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(1, time.Minute, zap.NewNop()).WithClock(clock.Now)
	cb.RecordFailure(0)

	clock.now = clock.now.Add(2 * time.Minute)
	if !cb.Allow() {
		t.Fatalf("expected probe to be allowed after timeout")
	}
	if cb.Allow() {
		t.Fatalf("expected second caller to be rejected while probe in flight")
	}
	cb.RecordSuccess()
	if cb.Status().State != CircuitStateClosed {
		t.Fatalf("expected circuit closed after successful probe")
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(3, time.Minute, zap.NewNop()).WithClock(clock.Now)
	for i := 0; i < 3; i++ {
		cb.RecordFailure(0)
	}

	clock.now = clock.now.Add(time.Minute)
	if !cb.Allow() {
		t.Fatalf("expected probe")
	}
	cb.RecordFailure(5 * time.Minute)
	if cb.Allow() {
		t.Fatalf("expected circuit to reopen")
	}
	clock.now = clock.now.Add(4 * time.Minute)
	if cb.Allow() {
		t.Fatalf("custom timeout should keep circuit open")
	}
}

func TestCircuitBreakerNeutralReleasesProbe(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(1, time.Second, zap.NewNop()).WithClock(clock.Now)
	cb.RecordFailure(0)
	clock.now = clock.now.Add(time.Second)

	if !cb.Allow() {
		t.Fatalf("expected probe")
	}
	cb.RecordNeutral()
	if !cb.Allow() {
		t.Fatalf("expected another probe after neutral outcome")
	}

	cb.Reset()
	if cb.Status().State != CircuitStateClosed || cb.Status().FailureCount != 0 {
		t.Fatalf("expected reset state, got %+v", cb.Status())
	}
}
