package domain

import (
	"context"
	"time"
)

// Provider is the uniform contract every adapter implements: send one
// completion request, get text or a classified error. Adapters translate
// between this contract and each remote API's specific call format.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Generate sends a single completion request. Blocking; bounded by the
	// context deadline set by the caller.
	Generate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)
}

// RegisteredProvider couples a provider adapter with its static configuration
// and mutable runtime health state. The registry exclusively owns instances;
// the router borrows them for the duration of one call.
type RegisteredProvider interface {
	// Config returns the provider's static configuration.
	Config() ProviderConfig

	// Adapter returns the underlying provider adapter.
	Adapter() Provider

	// Status derives the provider's current status from its stored counters
	// and timestamps. Never cached; a provider past its available-after
	// timestamp is re-evaluated as active.
	Status(now time.Time) ProviderStatus

	// Snapshot returns a point-in-time health view.
	Snapshot(now time.Time) HealthSnapshot

	// RecordSuccess resets the consecutive-failure count and folds the
	// latency into the rolling average.
	RecordSuccess(latency time.Duration)

	// RecordFailure increments the consecutive-failure count and may open
	// the circuit.
	RecordFailure(errMsg string)

	// RecordRateLimit starts the rate-limit cooldown without touching the
	// circuit breaker's failure count.
	RecordRateLimit(errMsg string)
}

// ProviderRegistry manages the configured provider set.
type ProviderRegistry interface {
	// Count returns the number of configured providers.
	Count() int

	// Eligible returns providers whose circuit is closed and whose
	// rate-limit cooldown has elapsed, ordered by priority then ID.
	Eligible(now time.Time) []RegisteredProvider

	// All returns every configured provider, ordered by priority then ID.
	All() []RegisteredProvider

	// Get retrieves a provider by ID.
	Get(id string) (RegisteredProvider, error)

	// HealthReport returns a health snapshot per provider ID.
	HealthReport(now time.Time) map[string]HealthSnapshot
}

// StatsCollector aggregates process-wide counters. Implementations serialize
// all writes.
type StatsCollector interface {
	// RecordAttempt folds one completed attempt into the aggregate
	// counters. attemptIndex is zero-based within the call; indexes beyond
	// zero count as fallback events.
	RecordAttempt(providerID string, attemptIndex int, outcome Outcome, latency time.Duration)

	// RecordRequest counts one logical generation call.
	RecordRequest(success bool)

	// Snapshot returns a copy of the current aggregate counters.
	Snapshot() AggregateStats

	// Reset zeroes all counters. It does not alter provider configuration
	// or circuit/rate-limit state.
	Reset()
}

// ResponseCache is an optional exact-match cache consulted before the
// fallback loop.
type ResponseCache interface {
	// Get returns the cached result for the request, or ErrCacheMiss.
	Get(ctx context.Context, req *GenerationRequest) (*GenerationResult, error)

	// Set stores a successful result with the given TTL.
	Set(ctx context.Context, req *GenerationRequest, result *GenerationResult, ttl time.Duration) error
}
