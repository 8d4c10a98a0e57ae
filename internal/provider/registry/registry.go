// Package registry owns the configured provider set: static configuration,
// adapter instances, and per-provider runtime health state. The registry is
// the exclusive owner of all provider state; the router borrows entries for
// the duration of one call and never retains them.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/health"
)

// entry couples one provider's configuration, adapter, and health state.
type entry struct {
	config   domain.ProviderConfig
	adapter  domain.Provider
	state    *health.State
	disabled bool
}

func (e *entry) Config() domain.ProviderConfig { return e.config }

func (e *entry) Adapter() domain.Provider { return e.adapter }

func (e *entry) Status(now time.Time) domain.ProviderStatus {
	if e.disabled {
		return domain.StatusDisabled
	}
	return e.state.Status(now)
}

func (e *entry) Snapshot(now time.Time) domain.HealthSnapshot {
	snap := e.state.Snapshot(now)
	if e.disabled {
		snap.Status = domain.StatusDisabled
	}
	return snap
}

func (e *entry) RecordSuccess(latency time.Duration) { e.state.RecordSuccess(latency) }

func (e *entry) RecordFailure(errMsg string) { e.state.RecordFailure(errMsg) }

func (e *entry) RecordRateLimit(errMsg string) { e.state.RecordRateLimit(errMsg) }

// Registry implements domain.ProviderRegistry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	clock   func() time.Time
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		clock:   time.Now,
	}
}

// NewRegistryWithClock creates a registry whose provider states use the
// injected clock.
func NewRegistryWithClock(clock func() time.Time) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		clock:   clock,
	}
}

// Register adds a configured provider with its adapter.
func (r *Registry) Register(cfg domain.ProviderConfig, adapter domain.Provider) error {
	if adapter == nil {
		return errors.New("adapter cannot be nil")
	}
	return r.add(cfg, adapter, false)
}

// RegisterDisabled records a provider without a usable credential. Disabled
// providers appear in health reports but are never eligible.
func (r *Registry) RegisterDisabled(cfg domain.ProviderConfig) error {
	return r.add(cfg, nil, true)
}

func (r *Registry) add(cfg domain.ProviderConfig, adapter domain.Provider, disabled bool) error {
	if cfg.ID == "" {
		return errors.New("provider ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[cfg.ID]; exists {
		return fmt.Errorf("provider %s already registered", cfg.ID)
	}

	r.entries[cfg.ID] = &entry{
		config:   cfg,
		adapter:  adapter,
		state:    health.NewStateWithClock(r.clock),
		disabled: disabled,
	}
	return nil
}

// Count returns the number of enabled providers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entries {
		if !e.disabled {
			n++
		}
	}
	return n
}

// Eligible returns enabled providers whose circuit is closed and whose
// rate-limit cooldown has elapsed, ordered by priority then ID.
func (r *Registry) Eligible(now time.Time) []domain.RegisteredProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RegisteredProvider, 0, len(r.entries))
	for _, e := range r.entries {
		if e.disabled || !e.state.Eligible(now) {
			continue
		}
		out = append(out, e)
	}
	sortProviders(out)
	return out
}

// All returns every enabled provider, ordered by priority then ID.
func (r *Registry) All() []domain.RegisteredProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RegisteredProvider, 0, len(r.entries))
	for _, e := range r.entries {
		if e.disabled {
			continue
		}
		out = append(out, e)
	}
	sortProviders(out)
	return out
}

// Get retrieves a provider by ID.
func (r *Registry) Get(id string) (domain.RegisteredProvider, error) {
	if id == "" {
		return nil, errors.New("provider ID cannot be empty")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[id]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", id)
	}
	return e, nil
}

// HealthReport returns a snapshot per provider ID, disabled providers
// included.
func (r *Registry) HealthReport(now time.Time) map[string]domain.HealthSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.HealthSnapshot, len(r.entries))
	for id, e := range r.entries {
		out[id] = e.Snapshot(now)
	}
	return out
}

func sortProviders(ps []domain.RegisteredProvider) {
	sort.Slice(ps, func(i, j int) bool {
		ci, cj := ps[i].Config(), ps[j].Config()
		if ci.Priority != cj.Priority {
			return ci.Priority < cj.Priority
		}
		return ci.ID < cj.ID
	})
}
