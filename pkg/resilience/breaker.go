package resilience

import (
	"sync"
	"time"
)

// BreakerConfig parameterises when a service's circuit trips.
type BreakerConfig struct {
	Threshold int
	Cooldown  time.Duration
}

// DefaultBreakerConfig returns the spec's default circuit-breaker
// parameters (trip after 5 consecutive failures, 5 minute cooldown).
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{Threshold: 5, Cooldown: 5 * time.Minute}
}

// Breaker implements the two-state (not three-state) circuit breaker
// the spec calls for: ShouldSkip(service) is true exactly when
// consecutive failures have reached the threshold and the last
// success is still within the cooldown window. A single success
// resets the failure count, which makes ShouldSkip false again
// immediately — there is no separate half-open probing state.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	services map[string]*serviceState
}

type serviceState struct {
	consecutiveFailures int
	lastSuccess         time.Time
}

// NewBreaker returns a Breaker configured by cfg. Zero-valued fields
// fall back to DefaultBreakerConfig.
func NewBreaker(cfg BreakerConfig) *Breaker {
	d := DefaultBreakerConfig()
	if cfg.Threshold > 0 {
		d.Threshold = cfg.Threshold
	}
	if cfg.Cooldown > 0 {
		d.Cooldown = cfg.Cooldown
	}
	return &Breaker{cfg: d, services: make(map[string]*serviceState)}
}

// ShouldSkip implements invariant I8.
func (b *Breaker) ShouldSkip(service string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.services[service]
	if !ok {
		return false
	}
	return s.consecutiveFailures >= b.cfg.Threshold && time.Since(s.lastSuccess) < b.cfg.Cooldown
}

// RecordSuccess resets the consecutive-failure counter for service and
// marks now as its last success.
func (b *Breaker) RecordSuccess(service string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stateLocked(service)
	s.consecutiveFailures = 0
	s.lastSuccess = time.Now()
}

// RecordFailure increments the consecutive-failure counter for
// service.
func (b *Breaker) RecordFailure(service string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stateLocked(service)
	s.consecutiveFailures++
}

func (b *Breaker) stateLocked(service string) *serviceState {
	s, ok := b.services[service]
	if !ok {
		s = &serviceState{lastSuccess: time.Now()}
		b.services[service] = s
	}
	return s
}

// ConsecutiveFailures reports the current failure streak for service,
// for observability.
func (b *Breaker) ConsecutiveFailures(service string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.services[service]
	if !ok {
		return 0
	}
	return s.consecutiveFailures
}
