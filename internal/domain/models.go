package domain

import "time"

// Strategy selects how the router orders candidate providers.
type Strategy string

const (
	// StrategyPriority tries providers in declared priority order.
	StrategyPriority Strategy = "priority"

	// StrategyIntelligent scores providers by success rate and latency.
	// This is the default strategy.
	StrategyIntelligent Strategy = "intelligent"

	// StrategyRoundRobin rotates a shared cursor over the eligible set.
	StrategyRoundRobin Strategy = "round_robin"

	// StrategyFastest picks the lowest rolling average response time.
	StrategyFastest Strategy = "fastest"
)

// ParseStrategy validates a strategy name. An empty name resolves to the
// default (intelligent) strategy.
func ParseStrategy(name string) (Strategy, bool) {
	switch Strategy(name) {
	case "":
		return StrategyIntelligent, true
	case StrategyPriority, StrategyIntelligent, StrategyRoundRobin, StrategyFastest:
		return Strategy(name), true
	default:
		return "", false
	}
}

// AdapterKind identifies which adapter implementation backs a provider.
type AdapterKind string

const (
	// AdapterOpenAI uses the official OpenAI SDK.
	AdapterOpenAI AdapterKind = "openai"

	// AdapterAnthropic uses the gollm SDK against the Anthropic API.
	AdapterAnthropic AdapterKind = "anthropic"

	// AdapterOpenAICompat speaks the generic OpenAI chat-completions wire
	// format against any compatible endpoint.
	AdapterOpenAICompat AdapterKind = "openai-compat"

	// AdapterEcho is an in-memory provider for development and tests.
	AdapterEcho AdapterKind = "echo"
)

// ProviderConfig is the immutable static configuration for one provider.
// Loaded once at startup; never mutated afterwards.
type ProviderConfig struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Kind        AdapterKind   `json:"kind"`
	BaseURL     string        `json:"base_url,omitempty"`
	APIKey      string        `json:"-"`
	Model       string        `json:"model"`
	Priority    int           `json:"priority"`
	Timeout     time.Duration `json:"timeout"`
	MaxTokens   int           `json:"max_tokens"`
}

// ProviderStatus is the derived runtime status of a provider.
type ProviderStatus string

const (
	StatusActive      ProviderStatus = "active"
	StatusCircuitOpen ProviderStatus = "circuit_open"
	StatusRateLimited ProviderStatus = "rate_limited"
	StatusDisabled    ProviderStatus = "disabled"
)

// GenerationRequest is a single logical generation request from a caller.
type GenerationRequest struct {
	Prompt       string   `json:"prompt"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Strategy     Strategy `json:"strategy,omitempty"`
	MaxAttempts  int      `json:"max_attempts,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Temperature  float64  `json:"temperature,omitempty"`
}

// ProviderRequest is the uniform request handed to a provider adapter after
// the router has resolved per-provider defaults.
type ProviderRequest struct {
	Prompt       string
	SystemPrompt string
	Model        string
	MaxTokens    int
	Temperature  float64
}

// Usage tracks token consumption for a single provider call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderResponse is the uniform response from a provider adapter.
type ProviderResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Outcome classifies the result of one provider attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeTimeout        Outcome = "timeout"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeAuthError      Outcome = "auth_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeCancelled      Outcome = "cancelled"
)

// AttemptRecord describes one provider attempt within a generation call.
// Records live only inside the call's result; they are never persisted.
type AttemptRecord struct {
	ProviderID          string  `json:"provider_id"`
	Outcome             Outcome `json:"outcome"`
	ResponseTimeSeconds float64 `json:"response_time_seconds"`
	Error               string  `json:"error,omitempty"`
}

// GenerationResult is the structured outcome of a generation call. Provider
// failures never surface as Go errors to the caller; they are folded into
// this result.
type GenerationResult struct {
	ID                  string          `json:"id"`
	Success             bool            `json:"success"`
	Content             string          `json:"content,omitempty"`
	ProviderID          string          `json:"provider_id,omitempty"`
	Model               string          `json:"model,omitempty"`
	Usage               Usage           `json:"usage"`
	ResponseTimeSeconds float64         `json:"response_time_seconds"`
	Attempts            []AttemptRecord `json:"attempts"`
	Error               string          `json:"error,omitempty"`
	Cached              bool            `json:"cached,omitempty"`
}

// HealthSnapshot is a point-in-time view of one provider's runtime state.
type HealthSnapshot struct {
	Status                 ProviderStatus `json:"status"`
	Successes              int64          `json:"successes"`
	Failures               int64          `json:"failures"`
	SuccessRate            float64        `json:"success_rate"`
	AvgResponseTimeSeconds float64        `json:"avg_response_time_seconds"`
	ConsecutiveFailures    int            `json:"consecutive_failures"`
	LastUsed               time.Time      `json:"last_used,omitzero"`
	AvailableAt            time.Time      `json:"available_at,omitzero"`
	LastError              string         `json:"last_error,omitempty"`
}

// ProviderStats is the per-provider rollup inside AggregateStats.
type ProviderStats struct {
	Requests               int64   `json:"requests"`
	Successes              int64   `json:"successes"`
	Failures               int64   `json:"failures"`
	AvgResponseTimeSeconds float64 `json:"avg_response_time_seconds"`
}

// AggregateStats is the process-wide counter set maintained by the stats
// collector. Reset only on explicit operator action.
type AggregateStats struct {
	TotalRequests          int64                    `json:"total_requests"`
	TotalSuccesses         int64                    `json:"total_successes"`
	TotalFailures          int64                    `json:"total_failures"`
	TotalFallbacks         int64                    `json:"total_fallbacks"`
	SuccessRate            float64                  `json:"success_rate"`
	AvgResponseTimeSeconds float64                  `json:"avg_response_time_seconds"`
	Providers              map[string]ProviderStats `json:"providers"`
}
