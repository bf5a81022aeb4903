package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"    // requests flow
	CircuitStateOpen     CircuitState = "OPEN"      // requests rejected
	CircuitStateHalfOpen CircuitState = "HALF_OPEN" // one probe allowed
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker stops calling a failing upstream after a run of failures and
// lets a single probe through once the open timeout has elapsed.
type CircuitBreaker struct {
	mu sync.Mutex

	state            CircuitState
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	openUntil        time.Time
	probeInFlight    bool

	now    func() time.Time
	logger *zap.Logger
}

func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	return &CircuitBreaker{
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

// WithClock replaces the time source. Tests only.
func (cb *CircuitBreaker) WithClock(now func() time.Time) *CircuitBreaker {
	cb.mu.Lock()
	cb.now = now
	cb.mu.Unlock()
	return cb
}

// Allow reports whether a request may be issued now. In HALF_OPEN only one
// caller gets true until the probe records its outcome.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitStateClosed:
		return true
	case CircuitStateOpen:
		if cb.now().Before(cb.openUntil) {
			return false
		}
		cb.transitionTo(CircuitStateHalfOpen)
		cb.probeInFlight = true
		return true
	case CircuitStateHalfOpen:
		if cb.probeInFlight {
			return false
		}
		cb.probeInFlight = true
		return true
	}
	return true
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.probeInFlight = false
	if cb.state == CircuitStateHalfOpen {
		cb.logger.Info("Circuit Breaker: Probe succeeded, closing circuit")
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

// RecordFailure counts a service failure. customTimeout overrides the open
// duration when positive (rate limits keep the circuit open longer).
func (cb *CircuitBreaker) RecordFailure(customTimeout time.Duration) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.probeInFlight = false

	timeout := cb.resetTimeout
	if customTimeout > 0 {
		timeout = customTimeout
	}

	cb.logger.Warn("Circuit Breaker: Failure recorded",
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
		zap.Duration("timeout", timeout),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.openUntil = cb.now().Add(timeout)
		cb.transitionTo(CircuitStateOpen)
	}
}

// RecordNeutral releases a half-open probe whose outcome says nothing about
// upstream health (e.g. a client-side validation error).
func (cb *CircuitBreaker) RecordNeutral() {
	cb.mu.Lock()
	cb.probeInFlight = false
	cb.mu.Unlock()
}

// must be called with lock held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	if cb.state == newState {
		return
	}
	oldState := cb.state
	cb.state = newState

	fields := []zap.Field{
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	}
	if newState == CircuitStateOpen {
		fields = append(fields, zap.Time("open_until", cb.openUntil))
	}
	cb.logger.Info("Circuit Breaker: State transition", fields...)
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.logger.Info("Circuit Breaker: Manual reset")
	cb.state = CircuitStateClosed
	cb.failureCount = 0
	cb.probeInFlight = false
	cb.openUntil = time.Time{}
}

func (cb *CircuitBreaker) Status() CircuitBreakerStatus {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	status := CircuitBreakerStatus{
		State:        cb.state,
		FailureCount: cb.failureCount,
	}
	if cb.state == CircuitStateOpen {
		next := cb.openUntil
		status.NextRetryTime = &next
	}
	return status
}

type CircuitBreakerStatus struct {
	State         CircuitState `json:"state"`
	FailureCount  int          `json:"failureCount"`
	NextRetryTime *time.Time   `json:"nextRetryTime,omitempty"`
}
