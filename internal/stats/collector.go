// Package stats aggregates process-wide request counters. The collector is
// the sole owner of the aggregate numbers; every write goes through its
// mutex.
package stats

import (
	"sync"
	"time"

	"github.com/davidbz/ifrit/internal/domain"
)

type providerTally struct {
	requests  int64
	successes int64
	failures  int64
	totalTime time.Duration
}

// Collector implements domain.StatsCollector.
type Collector struct {
	mu             sync.Mutex
	totalRequests  int64
	totalSuccesses int64
	totalFailures  int64
	totalFallbacks int64
	totalTime      time.Duration
	totalAttempts  int64
	providers      map[string]*providerTally
}

// NewCollector creates an empty stats collector.
func NewCollector() *Collector {
	return &Collector{providers: make(map[string]*providerTally)}
}

// RecordAttempt folds one completed provider attempt into the counters.
// Attempts beyond the first of a request count as fallback events.
// Cancelled attempts are ignored; the provider was never proven faulty.
func (c *Collector) RecordAttempt(providerID string, attemptIndex int, outcome domain.Outcome, latency time.Duration) {
	if outcome == domain.OutcomeCancelled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if attemptIndex > 0 {
		c.totalFallbacks++
	}

	tally, ok := c.providers[providerID]
	if !ok {
		tally = &providerTally{}
		c.providers[providerID] = tally
	}

	tally.requests++
	c.totalAttempts++
	c.totalTime += latency
	tally.totalTime += latency

	if outcome == domain.OutcomeSuccess {
		tally.successes++
	} else {
		tally.failures++
	}
}

// RecordRequest counts one logical generation call.
func (c *Collector) RecordRequest(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	if success {
		c.totalSuccesses++
	} else {
		c.totalFailures++
	}
}

// Snapshot returns a copy of the aggregate counters.
func (c *Collector) Snapshot() domain.AggregateStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := domain.AggregateStats{
		TotalRequests:  c.totalRequests,
		TotalSuccesses: c.totalSuccesses,
		TotalFailures:  c.totalFailures,
		TotalFallbacks: c.totalFallbacks,
		Providers:      make(map[string]domain.ProviderStats, len(c.providers)),
	}

	if c.totalRequests > 0 {
		out.SuccessRate = float64(c.totalSuccesses) / float64(c.totalRequests)
	}
	if c.totalAttempts > 0 {
		out.AvgResponseTimeSeconds = c.totalTime.Seconds() / float64(c.totalAttempts)
	}

	for id, tally := range c.providers {
		ps := domain.ProviderStats{
			Requests:  tally.requests,
			Successes: tally.successes,
			Failures:  tally.failures,
		}
		if tally.requests > 0 {
			ps.AvgResponseTimeSeconds = tally.totalTime.Seconds() / float64(tally.requests)
		}
		out.Providers[id] = ps
	}

	return out
}

// Reset zeroes every counter. Provider configuration and circuit/rate-limit
// state are untouched; those live in the registry.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests = 0
	c.totalSuccesses = 0
	c.totalFailures = 0
	c.totalFallbacks = 0
	c.totalTime = 0
	c.totalAttempts = 0
	c.providers = make(map[string]*providerTally)
}
