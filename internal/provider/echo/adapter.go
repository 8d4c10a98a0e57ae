// Package echo provides a testing provider that echoes back the input
// prompt. It implements the domain.Provider interface without making
// external API calls, providing deterministic responses for development and
// tests.
package echo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
)

const (
	providerName = "echo"
	modelName    = "echo-1"
)

// Adapter implements the domain.Provider interface for echo testing.
type Adapter struct {
	name string
}

// NewAdapter creates a new echo adapter. No configuration is required; the
// provider operates entirely in memory.
func NewAdapter() *Adapter {
	return &Adapter{name: providerName}
}

// Name returns the provider identifier.
func (a *Adapter) Name() string {
	return a.name
}

// Generate echoes the request back as the response.
func (a *Adapter) Generate(ctx context.Context, req *domain.ProviderRequest) (*domain.ProviderResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	logger := observability.FromContext(ctx)
	logger.Debug("echoing request")

	content := buildEchoContent(req)
	tokens := countTokens(content)

	return &domain.ProviderResponse{
		Content: content,
		Model:   modelName,
		Usage: domain.Usage{
			PromptTokens:     tokens,
			CompletionTokens: tokens,
			TotalTokens:      tokens * 2,
		},
	}, nil
}

// buildEchoContent constructs the echo response from the request.
func buildEchoContent(req *domain.ProviderRequest) string {
	var builder strings.Builder
	if req.SystemPrompt != "" {
		builder.WriteString(fmt.Sprintf("[system]: %s\n", req.SystemPrompt))
	}
	builder.WriteString(fmt.Sprintf("[user]: %s", req.Prompt))
	return builder.String()
}

// countTokens performs simple word-based token counting.
func countTokens(content string) int {
	return len(strings.Fields(content))
}
