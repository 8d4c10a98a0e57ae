package registry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/health"
	"github.com/davidbz/ifrit/internal/provider/registry"
)

// stubAdapter is a minimal domain.Provider for registry tests.
type stubAdapter struct {
	name string
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Generate(_ context.Context, _ *domain.ProviderRequest) (*domain.ProviderResponse, error) {
	return &domain.ProviderResponse{Content: "ok"}, nil
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register and retrieve a provider", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := reg.Register(
			domain.ProviderConfig{ID: "p1", Priority: 1},
			&stubAdapter{name: "p1"},
		)
		require.NoError(t, err)

		got, err := reg.Get("p1")
		require.NoError(t, err)
		require.Equal(t, "p1", got.Config().ID)
		require.Equal(t, 1, reg.Count())
	})

	t.Run("should reject duplicate IDs", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"}))
		err := reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"})
		require.Error(t, err)
	})

	t.Run("should reject empty ID and nil adapter", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.Error(t, reg.Register(domain.ProviderConfig{}, &stubAdapter{name: "x"}))
		require.Error(t, reg.Register(domain.ProviderConfig{ID: "x"}, nil))
	})
}

func TestRegistry_Eligible(t *testing.T) {
	t.Run("should order by priority then ID", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "c", Priority: 2}, &stubAdapter{name: "c"}))
		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "a", Priority: 3}, &stubAdapter{name: "a"}))
		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "b", Priority: 1}, &stubAdapter{name: "b"}))

		eligible := reg.Eligible(time.Now())
		require.Len(t, eligible, 3)
		require.Equal(t, "b", eligible[0].Config().ID)
		require.Equal(t, "c", eligible[1].Config().ID)
		require.Equal(t, "a", eligible[2].Config().ID)
	})

	t.Run("should exclude circuit-open providers until cooldown elapses", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		reg := registry.NewRegistryWithClock(func() time.Time { return now })

		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"}))
		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p2"}, &stubAdapter{name: "p2"}))

		p1, err := reg.Get("p1")
		require.NoError(t, err)
		for i := 0; i < health.FailureThreshold; i++ {
			p1.RecordFailure("connection refused")
		}

		eligible := reg.Eligible(now)
		require.Len(t, eligible, 1)
		require.Equal(t, "p2", eligible[0].Config().ID)

		eligible = reg.Eligible(now.Add(health.CircuitCooldown + time.Second))
		require.Len(t, eligible, 2)
	})

	t.Run("should never include disabled providers", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"}))
		require.NoError(t, reg.RegisterDisabled(domain.ProviderConfig{ID: "nokey"}))

		require.Len(t, reg.Eligible(time.Now()), 1)
		require.Equal(t, 1, reg.Count())
	})
}

func TestRegistry_HealthReport(t *testing.T) {
	t.Run("should include disabled providers with disabled status", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"}))
		require.NoError(t, reg.RegisterDisabled(domain.ProviderConfig{ID: "nokey"}))

		report := reg.HealthReport(time.Now())
		require.Len(t, report, 2)
		require.Equal(t, domain.StatusActive, report["p1"].Status)
		require.Equal(t, domain.StatusDisabled, report["nokey"].Status)
	})

	t.Run("should reflect recorded outcomes", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(domain.ProviderConfig{ID: "p1"}, &stubAdapter{name: "p1"}))

		p1, err := reg.Get("p1")
		require.NoError(t, err)
		p1.RecordSuccess(250 * time.Millisecond)
		p1.RecordFailure("boom")

		snap := reg.HealthReport(time.Now())["p1"]
		require.Equal(t, int64(1), snap.Successes)
		require.Equal(t, int64(1), snap.Failures)
		require.Equal(t, 1, snap.ConsecutiveFailures)
		require.Equal(t, "boom", snap.LastError)
	})
}
