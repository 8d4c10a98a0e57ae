package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ifrit/internal/domain"
	ifrithttp "github.com/davidbz/ifrit/internal/http"
	"github.com/davidbz/ifrit/internal/provider/registry"
	"github.com/davidbz/ifrit/internal/router"
	"github.com/davidbz/ifrit/internal/routing"
	"github.com/davidbz/ifrit/internal/stats"
)

// staticProvider answers every request with fixed content.
type staticProvider struct {
	name    string
	content string
	err     error
}

func (p *staticProvider) Name() string { return p.name }

func (p *staticProvider) Generate(_ context.Context, _ *domain.ProviderRequest) (*domain.ProviderResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domain.ProviderResponse{Content: p.content, Model: "m"}, nil
}

func newTestHandler(t *testing.T, providers ...*staticProvider) *ifrithttp.Handler {
	t.Helper()

	reg := registry.NewRegistry()
	for i, p := range providers {
		require.NoError(t, reg.Register(domain.ProviderConfig{ID: p.name, Priority: i + 1}, p))
	}

	service, err := router.NewService(reg, routing.NewEngine(0), stats.NewCollector(), nil, router.Config{})
	require.NoError(t, err)

	return ifrithttp.NewHandler(service)
}

func TestHandleGenerate(t *testing.T) {
	t.Run("should return a successful result", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "hi there"})

		body, _ := json.Marshal(domain.GenerationRequest{Prompt: "hello"})
		req := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleGenerate(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var result domain.GenerationResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.True(t, result.Success)
		require.Equal(t, "hi there", result.Content)
		require.Equal(t, "p1", result.ProviderID)
		require.Len(t, result.Attempts, 1)
	})

	t.Run("should return a well-formed failure on exhaustion", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{
			name: "p1",
			err: &domain.TransportError{ProviderError: domain.ProviderError{
				Provider: "p1", Message: "connection refused",
			}},
		})

		body, _ := json.Marshal(domain.GenerationRequest{Prompt: "hello"})
		req := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleGenerate(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var result domain.GenerationResult
		require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
		require.False(t, result.Success)
		require.NotEmpty(t, result.Error)
	})

	t.Run("should reject an empty prompt", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

		req := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader([]byte(`{}`)))
		w := httptest.NewRecorder()

		handler.HandleGenerate(w, req)

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should reject an unknown strategy", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

		body := []byte(`{"prompt": "hello", "strategy": "psychic"}`)
		req := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.HandleGenerate(w, req)

		require.Equal(t, nethttp.StatusBadRequest, w.Code)
	})

	t.Run("should reject non-POST methods", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

		req := httptest.NewRequest(nethttp.MethodGet, "/v1/generate", nil)
		w := httptest.NewRecorder()

		handler.HandleGenerate(w, req)

		require.Equal(t, nethttp.StatusMethodNotAllowed, w.Code)
	})
}

func TestHandleStats(t *testing.T) {
	t.Run("should return aggregate counters after traffic", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

		body, _ := json.Marshal(domain.GenerationRequest{Prompt: "hello"})
		genReq := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader(body))
		handler.HandleGenerate(httptest.NewRecorder(), genReq)

		req := httptest.NewRequest(nethttp.MethodGet, "/v1/stats", nil)
		w := httptest.NewRecorder()
		handler.HandleStats(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var got domain.AggregateStats
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Equal(t, int64(1), got.TotalRequests)
		require.Equal(t, int64(1), got.TotalSuccesses)
	})

	t.Run("should reset counters via the reset endpoint", func(t *testing.T) {
		handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

		body, _ := json.Marshal(domain.GenerationRequest{Prompt: "hello"})
		genReq := httptest.NewRequest(nethttp.MethodPost, "/v1/generate", bytes.NewReader(body))
		handler.HandleGenerate(httptest.NewRecorder(), genReq)

		resetReq := httptest.NewRequest(nethttp.MethodPost, "/v1/stats/reset", nil)
		resetW := httptest.NewRecorder()
		handler.HandleStatsReset(resetW, resetReq)
		require.Equal(t, nethttp.StatusNoContent, resetW.Code)

		statsReq := httptest.NewRequest(nethttp.MethodGet, "/v1/stats", nil)
		statsW := httptest.NewRecorder()
		handler.HandleStats(statsW, statsReq)

		var got domain.AggregateStats
		require.NoError(t, json.NewDecoder(statsW.Body).Decode(&got))
		require.Zero(t, got.TotalRequests)
	})
}

func TestHandleProviders(t *testing.T) {
	t.Run("should return a snapshot per provider", func(t *testing.T) {
		handler := newTestHandler(t,
			&staticProvider{name: "p1", content: "x"},
			&staticProvider{name: "p2", content: "y"},
		)

		req := httptest.NewRequest(nethttp.MethodGet, "/v1/providers", nil)
		w := httptest.NewRecorder()
		handler.HandleProviders(w, req)

		require.Equal(t, nethttp.StatusOK, w.Code)

		var got map[string]domain.HealthSnapshot
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		require.Len(t, got, 2)
		require.Equal(t, domain.StatusActive, got["p1"].Status)
	})
}

func TestHandleHealth(t *testing.T) {
	handler := newTestHandler(t, &staticProvider{name: "p1", content: "x"})

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.HandleHealth(w, req)

	require.Equal(t, nethttp.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}
