// Package openai provides an adapter for the OpenAI API using the official
// SDK. It implements the domain.Provider interface and converts between
// domain types and SDK types, classifying SDK errors into the router's
// error taxonomy.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
)

const providerName = "openai"

// Adapter implements the domain.Provider interface for OpenAI.
type Adapter struct {
	client openai.Client
	name   string
}

// NewAdapter creates a new OpenAI adapter. SDK-level retries are disabled;
// the router owns retry and fallback decisions.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Adapter{
		client: openai.NewClient(opts...),
		name:   providerName,
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
	logger.Debug("calling OpenAI API")

	resp, err := a.client.Chat.Completions.New(ctx, a.toSDKParams(req))
	if err != nil {
		logger.Error("OpenAI API call failed", observability.Error(err))
		return nil, a.classifyError(err)
	}

	logger.Debug("OpenAI API call succeeded",
		observability.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		observability.Int("completion_tokens", int(resp.Usage.CompletionTokens)),
	)

	return a.toDomainResponse(resp), nil
}

// toSDKParams converts a domain request to SDK ChatCompletionNewParams.
func (a *Adapter) toSDKParams(req *domain.ProviderRequest) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}

	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	return params
}

// toDomainResponse converts an SDK response to a domain response.
func (a *Adapter) toDomainResponse(resp *openai.ChatCompletion) *domain.ProviderResponse {
	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return &domain.ProviderResponse{
		Content: content,
		Model:   string(resp.Model),
		Usage: domain.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// classifyError maps SDK errors onto the router's error taxonomy.
func (a *Adapter) classifyError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return domain.ErrorFromStatusCode(a.name, apiErr.StatusCode, apiErr.Message)
	}
	return domain.WrapProviderError(a.name, err)
}
