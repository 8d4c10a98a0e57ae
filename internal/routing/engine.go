// Package routing implements the selection-strategy engine. A session is
// created per generation call so that strategy state shared across calls
// (the round-robin cursor) advances exactly once per request.
package routing

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/davidbz/ifrit/internal/domain"
)

const (
	successRateWeight = 0.7
	latencyWeight     = 0.3

	// neutralScore is assigned to providers with no call history so
	// untested providers get a fair initial chance.
	neutralScore = 0.5
)

// Engine produces per-request selection sessions for each strategy.
type Engine struct {
	// baseline, when non-zero, normalizes latency against a fixed
	// reference duration instead of the fastest eligible provider.
	baseline time.Duration

	cursor atomic.Uint64
}

// NewEngine creates a strategy engine. A zero baseline normalizes latency
// against the fastest eligible provider.
func NewEngine(baseline time.Duration) *Engine {
	return &Engine{baseline: baseline}
}

// Session is a per-request picker. Next is called once per attempt with the
// currently-eligible, not-yet-tried candidates; eligibility is re-evaluated
// by the caller each iteration.
type Session interface {
	Next(now time.Time, candidates []domain.RegisteredProvider) (domain.RegisteredProvider, error)
}

// Session creates a picker for one generation call.
func (e *Engine) Session(strategy domain.Strategy) Session {
	switch strategy {
	case domain.StrategyPriority:
		return prioritySession{}
	case domain.StrategyRoundRobin:
		// The shared cursor advances here, once per request, no matter
		// how many fallback attempts the request makes.
		return &roundRobinSession{start: e.cursor.Add(1) - 1}
	case domain.StrategyFastest:
		return fastestSession{}
	default:
		return intelligentSession{baseline: e.baseline}
	}
}

// prioritySession picks by declared priority, ascending. Deterministic;
// ignores runtime performance.
type prioritySession struct{}

func (prioritySession) Next(_ time.Time, candidates []domain.RegisteredProvider) (domain.RegisteredProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoEligibleProviders
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if less(c, best) {
			best = c
		}
	}
	return best, nil
}

// roundRobinSession spreads load evenly over the eligible list using the
// cursor position captured at session creation.
type roundRobinSession struct {
	start uint64
}

func (s *roundRobinSession) Next(_ time.Time, candidates []domain.RegisteredProvider) (domain.RegisteredProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoEligibleProviders
	}

	ordered := make([]domain.RegisteredProvider, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	return ordered[s.start%uint64(len(ordered))], nil
}

// intelligentSession scores candidates by success rate and latency:
// 0.7*success_rate + 0.3*(1 - normalized_response_time). Providers with no
// history score a neutral 0.5.
type intelligentSession struct {
	baseline time.Duration
}

func (s intelligentSession) Next(now time.Time, candidates []domain.RegisteredProvider) (domain.RegisteredProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoEligibleProviders
	}

	snaps := make([]domain.HealthSnapshot, len(candidates))
	fastest := 0.0
	for i, c := range candidates {
		snaps[i] = c.Snapshot(now)
		avg := snaps[i].AvgResponseTimeSeconds
		if avg > 0 && (fastest == 0 || avg < fastest) {
			fastest = avg
		}
	}

	var best domain.RegisteredProvider
	bestScore := -1.0
	for i, c := range candidates {
		score := s.score(snaps[i], fastest)
		if score > bestScore || (score == bestScore && less(c, best)) {
			best = c
			bestScore = score
		}
	}
	return best, nil
}

func (s intelligentSession) score(snap domain.HealthSnapshot, fastest float64) float64 {
	total := snap.Successes + snap.Failures
	if total == 0 {
		return neutralScore
	}

	successRate := float64(snap.Successes) / float64(total)

	latencyScore := 0.0
	avg := snap.AvgResponseTimeSeconds
	switch {
	case avg <= 0:
		// Counted attempts but no measured latency yet.
		latencyScore = neutralScore
	case s.baseline > 0:
		ratio := avg / s.baseline.Seconds()
		if ratio > 1 {
			ratio = 1
		}
		latencyScore = 1 - ratio
	default:
		// Relative to the fastest eligible provider: the fastest scores
		// 1.0, slower providers proportionally less.
		latencyScore = fastest / avg
	}

	return successRateWeight*successRate + latencyWeight*latencyScore
}

// fastestSession picks the lowest rolling average response time; ties break
// by declared priority. A provider with no measured latency is ranked as if
// it matched the fastest measured candidate, so it still receives traffic
// without automatically winning over every proven provider.
type fastestSession struct{}

func (fastestSession) Next(now time.Time, candidates []domain.RegisteredProvider) (domain.RegisteredProvider, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoEligibleProviders
	}

	avgs := make([]float64, len(candidates))
	fastestKnown := 0.0
	for i, c := range candidates {
		avgs[i] = c.Snapshot(now).AvgResponseTimeSeconds
		if avgs[i] > 0 && (fastestKnown == 0 || avgs[i] < fastestKnown) {
			fastestKnown = avgs[i]
		}
	}

	var best domain.RegisteredProvider
	bestAvg := -1.0
	for i, c := range candidates {
		avg := avgs[i]
		if avg <= 0 {
			avg = fastestKnown
		}
		switch {
		case best == nil, avg < bestAvg:
			best = c
			bestAvg = avg
		case avg == bestAvg && less(c, best):
			best = c
		}
	}
	return best, nil
}

// less orders providers by declared priority, then ID for determinism.
func less(a, b domain.RegisteredProvider) bool {
	if b == nil {
		return true
	}
	ca, cb := a.Config(), b.Config()
	if ca.Priority != cb.Priority {
		return ca.Priority < cb.Priority
	}
	return ca.ID < cb.ID
}
