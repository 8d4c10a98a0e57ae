// Package anthropic provides an adapter for the Anthropic API via the gollm
// SDK. It implements the domain.Provider interface; gollm's own retry loop
// is disabled because the router owns retry and fallback decisions.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/gollm"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
)

const providerName = "anthropic"

// Adapter implements the domain.Provider interface for Anthropic.
//
// gollm options (model, temperature) live on the client, not the request, so
// per-request overrides mutate shared state. The mutex serializes calls and
// every call sets both options, resolved against the configured defaults, so
// one request's override never leaks into the next.
type Adapter struct {
	name string

	mu          sync.Mutex
	llm         gollm.LLM
	model       string
	temperature float64
}

// NewAdapter creates a new Anthropic adapter.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	llm, err := gollm.NewLLM(
		gollm.SetProvider(providerName),
		gollm.SetModel(cfg.Model),
		gollm.SetAPIKey(cfg.APIKey),
		gollm.SetMaxTokens(cfg.MaxTokens),
		gollm.SetTemperature(cfg.Temperature),
		gollm.SetMaxRetries(0),
		gollm.SetLogLevel(gollm.LogLevelWarn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
	}

	return &Adapter{
		name:        providerName,
		llm:         llm,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

// Name returns the provider identifier.
func (a *Adapter) Name() string {
	return a.name
}

// Generate sends a single completion request.
func (a *Adapter) Generate(ctx context.Context, req *domain.ProviderRequest) (*domain.ProviderResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("calling Anthropic API")

	opts := []gollm.PromptOption{}
	if req.SystemPrompt != "" {
		opts = append(opts, gollm.WithSystemPrompt(strings.TrimSpace(req.SystemPrompt), gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, gollm.WithMaxLength(req.MaxTokens))
	}
	prompt := gollm.NewPrompt(req.Prompt, opts...)

	model, temperature := a.resolveOverrides(req)

	a.mu.Lock()
	a.llm.SetOption("model", model)
	a.llm.SetOption("temperature", temperature)
	text, err := a.llm.Generate(ctx, prompt)
	a.mu.Unlock()

	if err != nil {
		logger.Error("Anthropic API call failed", observability.Error(err))
		// gollm surfaces provider errors as plain text; classification
		// falls back to message markers.
		return nil, domain.WrapProviderError(a.name, err)
	}

	logger.Debug("Anthropic API call succeeded",
		observability.Int("content_length", len(text)))

	return &domain.ProviderResponse{
		Content: text,
		Model:   model,
	}, nil
}

// resolveOverrides returns the effective model and temperature for one
// request: the request value when set, the configured default otherwise.
func (a *Adapter) resolveOverrides(req *domain.ProviderRequest) (string, float64) {
	model := a.model
	if req.Model != "" {
		model = req.Model
	}

	temperature := a.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	return model, temperature
}
