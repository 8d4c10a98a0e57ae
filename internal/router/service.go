// Package router implements the fallback execution loop: select a provider,
// call it with a timeout, record the outcome, and retry against the next
// candidate until success or the attempt budget runs out. Attempts within a
// call are strictly sequential; parallel speculative calls would duplicate
// billed requests.
package router

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
	"github.com/davidbz/ifrit/internal/routing"
)

// DefaultProviderTimeout bounds a single provider call when the provider
// config does not set its own timeout.
const DefaultProviderTimeout = 30 * time.Second

// Config tunes the router service.
type Config struct {
	// DefaultStrategy is used when a request does not name a strategy.
	// Empty falls back to the intelligent strategy.
	DefaultStrategy domain.Strategy

	// MaxAttempts is the attempt-budget ceiling per call. Zero means the
	// budget is bounded only by the configured provider count.
	MaxAttempts int

	// DefaultTimeout bounds provider calls without a per-provider timeout.
	DefaultTimeout time.Duration

	// CacheTTL is the lifetime of cached responses.
	CacheTTL time.Duration
}

// Service routes generation requests across providers with fallback.
type Service struct {
	registry domain.ProviderRegistry
	engine   *routing.Engine
	stats    domain.StatsCollector
	cache    domain.ResponseCache

	defaultStrategy domain.Strategy
	maxAttempts     int
	defaultTimeout  time.Duration
	cacheTTL        time.Duration
	clock           func() time.Time
}

// NewService creates a router service. cache may be nil to disable response
// caching.
func NewService(
	registry domain.ProviderRegistry,
	engine *routing.Engine,
	stats domain.StatsCollector,
	cache domain.ResponseCache,
	cfg Config,
) (*Service, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if registry.Count() == 0 {
		return nil, domain.ErrNoProvidersConfigured
	}

	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}

	return &Service{
		registry:        registry,
		engine:          engine,
		stats:           stats,
		cache:           cache,
		defaultStrategy: cfg.DefaultStrategy,
		maxAttempts:     cfg.MaxAttempts,
		defaultTimeout:  timeout,
		cacheTTL:        cacheTTL,
		clock:           time.Now,
	}, nil
}

// Generate routes one generation request. Provider failures never surface as
// Go errors; the caller always receives a well-formed result.
func (s *Service) Generate(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
	start := s.clock()
	result := &domain.GenerationResult{
		ID:       uuid.New().String(),
		Attempts: []domain.AttemptRecord{},
	}

	logger := observability.FromContext(ctx)

	if req == nil || req.Prompt == "" {
		result.Error = "prompt cannot be empty"
		return result
	}

	requested := string(req.Strategy)
	if requested == "" {
		requested = string(s.defaultStrategy)
	}
	strategy, ok := domain.ParseStrategy(requested)
	if !ok {
		result.Error = "unknown strategy: " + string(req.Strategy)
		return result
	}

	if cached := s.cacheLookup(ctx, req); cached != nil {
		cached.ID = result.ID
		cached.Cached = true
		cached.ResponseTimeSeconds = s.clock().Sub(start).Seconds()
		s.stats.RecordRequest(true)
		return cached
	}

	budget := s.attemptBudget(req)
	session := s.engine.Session(strategy)
	tried := make(map[string]bool, budget)

	logger.Debug("starting fallback loop",
		observability.String("strategy", string(strategy)),
		observability.Int("budget", budget))

	for i := 0; i < budget; i++ {
		candidate, err := s.nextCandidate(session, tried)
		if err != nil {
			break
		}

		cfg := candidate.Config()
		tried[cfg.ID] = true

		attempt, resp := s.tryProvider(ctx, candidate, req, i)
		result.Attempts = append(result.Attempts, attempt)

		switch attempt.Outcome {
		case domain.OutcomeSuccess:
			result.Success = true
			result.Content = resp.Content
			result.ProviderID = cfg.ID
			result.Model = resp.Model
			result.Usage = resp.Usage
			result.ResponseTimeSeconds = s.clock().Sub(start).Seconds()
			s.stats.RecordRequest(true)
			s.cacheStore(ctx, req, result)
			return result

		case domain.OutcomeCancelled:
			// The provider was never proven faulty; return promptly
			// without touching its circuit state.
			result.Error = "request cancelled"
			result.ResponseTimeSeconds = s.clock().Sub(start).Seconds()
			s.stats.RecordRequest(false)
			return result

		default:
			logger.Warn("provider attempt failed, trying next candidate",
				observability.String("provider", cfg.ID),
				observability.String("outcome", string(attempt.Outcome)))
		}
	}

	result.ResponseTimeSeconds = s.clock().Sub(start).Seconds()
	if len(result.Attempts) == 0 {
		result.Error = domain.ErrNoEligibleProviders.Error()
	} else {
		result.Error = (&domain.AllProvidersExhaustedError{Attempts: result.Attempts}).Error()
	}
	s.stats.RecordRequest(false)
	return result
}

// attemptBudget is min(requested max attempts, configured ceiling, provider
// count).
func (s *Service) attemptBudget(req *domain.GenerationRequest) int {
	budget := s.registry.Count()
	if s.maxAttempts > 0 && s.maxAttempts < budget {
		budget = s.maxAttempts
	}
	if req.MaxAttempts > 0 && req.MaxAttempts < budget {
		budget = req.MaxAttempts
	}
	return budget
}

// nextCandidate re-evaluates eligibility each iteration; within a single
// call only that call's own outcomes can change it.
func (s *Service) nextCandidate(session routing.Session, tried map[string]bool) (domain.RegisteredProvider, error) {
	now := s.clock()

	eligible := s.registry.Eligible(now)
	remaining := eligible[:0:0]
	for _, p := range eligible {
		if !tried[p.Config().ID] {
			remaining = append(remaining, p)
		}
	}

	return session.Next(now, remaining)
}

// tryProvider performs one bounded provider call and records the outcome
// into the provider's state and the stats collector.
func (s *Service) tryProvider(
	ctx context.Context,
	candidate domain.RegisteredProvider,
	req *domain.GenerationRequest,
	attemptIndex int,
) (domain.AttemptRecord, *domain.ProviderResponse) {
	cfg := candidate.Config()
	logger := observability.FromContext(ctx)

	preq := &domain.ProviderRequest{
		Prompt:       req.Prompt,
		SystemPrompt: req.SystemPrompt,
		Model:        cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  req.Temperature,
	}
	if req.MaxTokens > 0 {
		preq.MaxTokens = req.MaxTokens
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	callStart := time.Now()
	resp, callErr := candidate.Adapter().Generate(attemptCtx, preq)
	latency := time.Since(callStart)

	record := domain.AttemptRecord{
		ProviderID:          cfg.ID,
		ResponseTimeSeconds: latency.Seconds(),
	}

	if callErr == nil {
		record.Outcome = domain.OutcomeSuccess
		candidate.RecordSuccess(latency)
		s.stats.RecordAttempt(cfg.ID, attemptIndex, record.Outcome, latency)
		logger.Info("provider attempt succeeded",
			observability.String("provider", cfg.ID),
			observability.Float64("latency_seconds", latency.Seconds()))
		return record, resp
	}

	// Caller cancellation is not a provider fault.
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		record.Outcome = domain.OutcomeCancelled
		record.Error = "request cancelled"
		return record, nil
	}

	classified := domain.WrapProviderError(cfg.ID, callErr)
	record.Outcome = domain.ClassifyOutcome(classified)
	record.Error = classified.Error()

	if record.Outcome == domain.OutcomeRateLimited {
		candidate.RecordRateLimit(record.Error)
	} else {
		candidate.RecordFailure(record.Error)
	}
	s.stats.RecordAttempt(cfg.ID, attemptIndex, record.Outcome, latency)

	return record, nil
}

func (s *Service) cacheLookup(ctx context.Context, req *domain.GenerationRequest) *domain.GenerationResult {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.Get(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			observability.FromContext(ctx).Warn("cache get failed, continuing without cache",
				observability.Error(err))
		}
		return nil
	}
	return cached
}

func (s *Service) cacheStore(ctx context.Context, req *domain.GenerationRequest, result *domain.GenerationResult) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, req, result, s.cacheTTL); err != nil {
		observability.FromContext(ctx).Warn("failed to store response in cache",
			observability.Error(err))
	}
}

// GetStats returns the aggregate counters.
func (s *Service) GetStats() domain.AggregateStats {
	return s.stats.Snapshot()
}

// GetProviderHealth returns a health snapshot per provider.
func (s *Service) GetProviderHealth() map[string]domain.HealthSnapshot {
	return s.registry.HealthReport(s.clock())
}

// ResetStats zeroes the aggregate counters. Circuit and rate-limit state are
// untouched.
func (s *Service) ResetStats() {
	s.stats.Reset()
}
