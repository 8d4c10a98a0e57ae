package config_test

import (
	"os"
	"testing"

	"github.com/davidbz/ifrit/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should load config with defaults", func(t *testing.T) {
		// Clear environment
		os.Clearenv()

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify defaults
		require.Equal(t, 8080, cfg.Server.Port)
		require.Equal(t, 30, cfg.Server.ReadTimeout)
		require.Equal(t, 30, cfg.Server.WriteTimeout)
		require.Equal(t, "intelligent", cfg.Router.Strategy)
		require.Equal(t, 3, cfg.Router.MaxAttempts)
		require.Equal(t, 30, cfg.Router.DefaultTimeout)
		require.Zero(t, cfg.Router.LatencyBaselineMS)
		require.Equal(t, 3600, cfg.Router.CacheTTL)
		require.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
		require.Equal(t, 30, cfg.OpenAI.Timeout)
		require.Empty(t, cfg.OpenAI.APIKey)
		require.Equal(t, "claude-3-5-haiku-20241022", cfg.Anthropic.Model)
		require.Empty(t, cfg.Redis.Addr)
		require.False(t, cfg.Echo.Enabled)
	})

	t.Run("should load config from environment variables", func(t *testing.T) {
		// Set environment variables using t.Setenv for automatic cleanup
		t.Setenv("SERVER_PORT", "9000")
		t.Setenv("ROUTER_STRATEGY", "priority")
		t.Setenv("ROUTER_MAX_ATTEMPTS", "5")
		t.Setenv("ROUTER_LATENCY_BASELINE_MS", "2000")
		t.Setenv("OPENAI_API_KEY", "sk-test-key")
		t.Setenv("OPENAI_BASE_URL", "https://test.openai.com")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
		t.Setenv("ANTHROPIC_PRIORITY", "1")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("ECHO_ENABLED", "true")

		cfg := config.Load()

		require.NotNil(t, cfg)

		// Verify loaded values
		require.Equal(t, 9000, cfg.Server.Port)
		require.Equal(t, "priority", cfg.Router.Strategy)
		require.Equal(t, 5, cfg.Router.MaxAttempts)
		require.Equal(t, 2000, cfg.Router.LatencyBaselineMS)
		require.Equal(t, "sk-test-key", cfg.OpenAI.APIKey)
		require.Equal(t, "https://test.openai.com", cfg.OpenAI.BaseURL)
		require.Equal(t, "sk-ant-test", cfg.Anthropic.APIKey)
		require.Equal(t, 1, cfg.Anthropic.Priority)
		require.Equal(t, "localhost:6379", cfg.Redis.Addr)
		require.True(t, cfg.Echo.Enabled)
	})
}
