package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/observability"
	"github.com/davidbz/ifrit/internal/router"
)

// Handler handles HTTP requests.
type Handler struct {
	router *router.Service
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(routerService *router.Service) *Handler {
	return &Handler{router: routerService}
}

// HandleGenerate processes generation requests.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	// An empty strategy falls through to the service's configured default.
	if req.Strategy != "" {
		if _, ok := domain.ParseStrategy(string(req.Strategy)); !ok {
			http.Error(w, fmt.Sprintf("unknown strategy: %s", req.Strategy), http.StatusBadRequest)
			return
		}
	}

	ctx = observability.WithStrategy(ctx, string(req.Strategy))
	logger := observability.FromContext(ctx)
	logger.Info("generation request received",
		zap.Int("prompt_length", len(req.Prompt)),
		zap.Int("max_attempts", req.MaxAttempts),
	)

	result := h.router.Generate(ctx, &req)

	logger.Info("generation request finished",
		zap.Bool("success", result.Success),
		zap.String("provider", result.ProviderID),
		zap.Int("attempts", len(result.Attempts)),
		zap.Float64("elapsed_seconds", result.ResponseTimeSeconds),
	)

	writeJSON(ctx, w, http.StatusOK, result)
}

// HandleStats returns the aggregate counters.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, h.router.GetStats())
}

// HandleStatsReset zeroes the aggregate counters.
func (h *Handler) HandleStatsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.router.ResetStats()
	observability.FromContext(r.Context()).Info("stats reset")
	w.WriteHeader(http.StatusNoContent)
}

// HandleProviders returns a health snapshot per provider.
func (h *Handler) HandleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, h.router.GetProviderHealth())
}

// HandleHealth reports process liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", zap.Error(err))
	}
}
