// Package health tracks per-provider runtime state: the circuit-breaker
// state machine and the rate-limit cooldown. Eligibility is computed lazily
// from stored timestamps at selection time; no background sweeper runs.
package health

import (
	"sync"
	"time"

	"github.com/davidbz/ifrit/internal/domain"
)

const (
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit.
	FailureThreshold = 5

	// CircuitCooldown is how long an open circuit stays ineligible.
	CircuitCooldown = 10 * time.Minute

	// RateLimitCooldown is how long a throttled provider stays ineligible.
	RateLimitCooldown = 5 * time.Minute
)

// State is the mutable runtime state for one provider. All methods are safe
// for concurrent use; a per-provider mutex guards every field.
type State struct {
	// Clock is overridable in tests. Defaults to time.Now.
	clock func() time.Time

	mu                  sync.Mutex
	consecutiveFailures int
	successes           int64
	failures            int64
	avgResponseTime     time.Duration
	lastUsed            time.Time
	availableAfter      time.Time
	cooldownReason      domain.ProviderStatus
	lastError           string
}

// NewState creates a fresh provider state.
func NewState() *State {
	return &State{clock: time.Now}
}

// NewStateWithClock creates a provider state with an injected clock.
func NewStateWithClock(clock func() time.Time) *State {
	return &State{clock: clock}
}

// Status derives the provider's status from stored timestamps and the given
// time. A provider past its available-after timestamp is always re-evaluated
// as active, never left stuck in a cooldown status.
func (s *State) Status(now time.Time) domain.ProviderStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Before(s.availableAfter) {
		return s.cooldownReason
	}
	return domain.StatusActive
}

// Eligible reports whether the provider may be selected at the given time.
func (s *State) Eligible(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !now.Before(s.availableAfter)
}

// RecordSuccess resets the circuit breaker and folds the latency into the
// rolling average. One success after a cooldown fully closes the circuit.
func (s *State) RecordSuccess(latency time.Duration) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.consecutiveFailures = 0
	s.successes++
	s.lastUsed = now
	s.lastError = ""
	s.availableAfter = time.Time{}
	s.cooldownReason = ""

	// Cumulative mean over successful calls.
	s.avgResponseTime += (latency - s.avgResponseTime) / time.Duration(s.successes)
}

// RecordFailure counts a correctness failure. Reaching the threshold opens
// the circuit for the circuit cooldown.
func (s *State) RecordFailure(errMsg string) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	s.consecutiveFailures++
	s.lastUsed = now
	s.lastError = errMsg

	if s.consecutiveFailures >= FailureThreshold {
		after := now.Add(CircuitCooldown)
		if after.After(s.availableAfter) {
			s.availableAfter = after
			s.cooldownReason = domain.StatusCircuitOpen
		}
	}
}

// RecordRateLimit starts the rate-limit cooldown. A rate limit is not a
// correctness failure, so the consecutive-failure count is untouched. An
// already-longer circuit cooldown is never shortened.
func (s *State) RecordRateLimit(errMsg string) {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	s.lastUsed = now
	s.lastError = errMsg

	after := now.Add(RateLimitCooldown)
	if after.After(s.availableAfter) {
		s.availableAfter = after
		s.cooldownReason = domain.StatusRateLimited
	}
}

// Snapshot returns a point-in-time health view.
func (s *State) Snapshot(now time.Time) domain.HealthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := domain.StatusActive
	if now.Before(s.availableAfter) {
		status = s.cooldownReason
	}

	total := s.successes + s.failures
	successRate := 0.0
	if total > 0 {
		successRate = float64(s.successes) / float64(total)
	}

	return domain.HealthSnapshot{
		Status:                 status,
		Successes:              s.successes,
		Failures:               s.failures,
		SuccessRate:            successRate,
		AvgResponseTimeSeconds: s.avgResponseTime.Seconds(),
		ConsecutiveFailures:    s.consecutiveFailures,
		LastUsed:               s.lastUsed,
		AvailableAt:            s.availableAfter,
		LastError:              s.lastError,
	}
}
