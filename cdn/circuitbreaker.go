package cdn

import (
	"sync"
	"time"
)

// BreakerState is a circuit breaker's current state.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) metricValue() float64 { return float64(s) }

// BreakerConfig tunes when a circuit opens and how long it stays open.
type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// DefaultBreakerConfig matches spec.md's stated defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{FailureThreshold: 5, Cooldown: 30 * time.Second}
}

// CircuitBreaker is a per-server failure tracker: Closed while failures
// stay under the threshold, Open once they reach it (rejecting requests
// until the cooldown elapses), then HalfOpen to allow one probe request
// through — a success returns to Closed, a failure reopens.
type CircuitBreaker struct {
	mu                  sync.Mutex
	cfg                 BreakerConfig
	state               BreakerState
	consecutiveFailures int
	openedAt            time.Time
}

// NewCircuitBreaker creates a Closed breaker using cfg.
func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{cfg: cfg, state: BreakerClosed}
}

// Allow reports whether a request may proceed, transitioning Open to
// HalfOpen once the cooldown has elapsed.
func (b *CircuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if time.Since(b.openedAt) >= b.cfg.Cooldown {
			b.state = BreakerHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess closes the breaker and resets its failure count.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.state = BreakerClosed
}

// RecordFailure increments the failure count, opening the breaker once the
// threshold is reached (including immediately, from HalfOpen).
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == BreakerHalfOpen {
		b.open()
		return
	}

	b.consecutiveFailures++
	if b.consecutiveFailures >= b.cfg.FailureThreshold {
		b.open()
	}
}

func (b *CircuitBreaker) open() {
	b.state = BreakerOpen
	b.openedAt = time.Now()
}

// State returns the breaker's current state.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
