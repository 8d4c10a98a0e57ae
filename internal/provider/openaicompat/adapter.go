// Package openaicompat provides an adapter for any endpoint speaking the
// OpenAI chat-completions wire format (OpenRouter, Groq, local inference
// servers). It implements the domain.Provider interface over plain HTTP;
// no vendor SDK covers arbitrary compatible endpoints.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Adapter implements the domain.Provider interface for OpenAI-compatible
// endpoints.
type Adapter struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAdapter creates a new adapter for an OpenAI-compatible endpoint. The
// HTTP client carries no timeout of its own; the router bounds each call via
// the request context.
func NewAdapter(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}

	name := cfg.Name
	if name == "" {
		name = "openai-compat"
	}

	return &Adapter{
		name:    name,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{},
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
	logger.Debug("calling chat-completions endpoint",
		observability.String("base_url", a.baseURL))

	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+a.apiKey)

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		logger.Error("chat-completions call failed", observability.Error(err))
		return nil, domain.WrapProviderError(a.name, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, domain.WrapProviderError(a.name, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, domain.ErrorFromStatusCode(a.name, httpResp.StatusCode, errorMessage(respBody, httpResp.StatusCode))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, domain.WrapProviderError(a.name, fmt.Errorf("failed to decode response: %w", err))
	}

	if len(parsed.Choices) == 0 {
		return nil, domain.WrapProviderError(a.name, errors.New("response contained no choices"))
	}

	logger.Debug("chat-completions call succeeded",
		observability.Int("total_tokens", parsed.Usage.TotalTokens))

	return &domain.ProviderResponse{
		Content: parsed.Choices[0].Message.Content,
		Model:   parsed.Model,
		Usage: domain.Usage{
			PromptTokens:     parsed.Usage.PromptTokens,
			CompletionTokens: parsed.Usage.CompletionTokens,
			TotalTokens:      parsed.Usage.TotalTokens,
		},
	}, nil
}

// errorMessage extracts the provider's error message from a failure body.
func errorMessage(body []byte, statusCode int) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return fmt.Sprintf("unexpected status %d", statusCode)
}
