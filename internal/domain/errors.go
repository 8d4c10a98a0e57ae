package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrCacheMiss indicates no cached entry was found.
var ErrCacheMiss = errors.New("cache miss")

// ErrNoEligibleProviders indicates the eligible set is empty at selection
// time (every provider circuit-open, rate-limited, or disabled).
var ErrNoEligibleProviders = errors.New("no eligible providers")

// ErrNoProvidersConfigured indicates the registry is empty at startup.
// This is a fatal configuration error, never a runtime one.
var ErrNoProvidersConfigured = errors.New("no providers configured")

// ProviderError is the base error for classified provider failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// AuthenticationError indicates a bad or rejected credential. Not retried
// against the same provider; other providers are still tried.
type AuthenticationError struct{ ProviderError }

// RateLimitError indicates the provider signaled throttling. Triggers the
// rate-limit cooldown, not a circuit-breaker failure.
type RateLimitError struct{ ProviderError }

// TimeoutError indicates no response arrived within the per-provider
// deadline.
type TimeoutError struct{ ProviderError }

// TransportError indicates a network or connection failure, or any provider
// error without a more specific classification.
type TransportError struct{ ProviderError }

// AllProvidersExhaustedError is surfaced in the result when every candidate
// within the attempt budget has been tried and all failed.
type AllProvidersExhaustedError struct {
	Attempts []AttemptRecord
}

func (e *AllProvidersExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		detail := a.Error
		if detail == "" {
			detail = string(a.Outcome)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", a.ProviderID, detail))
	}
	return fmt.Sprintf("all providers exhausted after %d attempts (%s)",
		len(e.Attempts), strings.Join(parts, "; "))
}

// ErrorFromStatusCode maps an HTTP status code from a provider response to
// the matching classified error.
func ErrorFromStatusCode(provider string, statusCode int, message string) error {
	pe := ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
	}

	switch statusCode {
	case 401, 403:
		return &AuthenticationError{ProviderError: pe}
	case 429:
		return &RateLimitError{ProviderError: pe}
	case 408, 504:
		return &TimeoutError{ProviderError: pe}
	default:
		return &TransportError{ProviderError: pe}
	}
}

// WrapProviderError classifies an arbitrary adapter error. Context errors
// map to timeout/cancel outcomes; everything else becomes a transport error
// unless already classified.
func WrapProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}

	var authErr *AuthenticationError
	var rateErr *RateLimitError
	var timeoutErr *TimeoutError
	var transportErr *TransportError
	if errors.As(err, &authErr) || errors.As(err, &rateErr) ||
		errors.As(err, &timeoutErr) || errors.As(err, &transportErr) {
		return err
	}

	pe := ProviderError{Provider: provider, Message: "provider call failed", Cause: err}

	if errors.Is(err, context.DeadlineExceeded) {
		pe.Message = "provider call timed out"
		return &TimeoutError{ProviderError: pe}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		pe.Message = "provider call timed out"
		return &TimeoutError{ProviderError: pe}
	}

	// SDKs without typed errors surface rate limits and auth failures as
	// message text; classify on well-known markers.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429") ||
		strings.Contains(msg, "too many requests"):
		pe.Message = "provider rate limited"
		return &RateLimitError{ProviderError: pe}
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401") ||
		strings.Contains(msg, "invalid api key") || strings.Contains(msg, "authentication"):
		pe.Message = "provider rejected credentials"
		return &AuthenticationError{ProviderError: pe}
	}

	return &TransportError{ProviderError: pe}
}

// ClassifyOutcome maps a classified error to its attempt outcome. A nil
// error is a success. Caller cancellation is detected by the execution loop
// from its own context, never inferred here: a provider error that merely
// wraps context.Canceled is still a provider failure and must not stop the
// fallback loop.
func ClassifyOutcome(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}

	var authErr *AuthenticationError
	var rateErr *RateLimitError
	var timeoutErr *TimeoutError
	switch {
	case errors.As(err, &authErr):
		return OutcomeAuthError
	case errors.As(err, &rateErr):
		return OutcomeRateLimited
	case errors.As(err, &timeoutErr):
		return OutcomeTimeout
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	default:
		return OutcomeTransportError
	}
}
