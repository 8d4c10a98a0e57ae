package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	rediscache "github.com/davidbz/ifrit/internal/cache/redis"
	"github.com/davidbz/ifrit/internal/config"
	"github.com/davidbz/ifrit/internal/domain"
	"github.com/davidbz/ifrit/internal/http"
	"github.com/davidbz/ifrit/internal/http/middleware"
	"github.com/davidbz/ifrit/internal/observability"
	"github.com/davidbz/ifrit/internal/provider/anthropic"
	"github.com/davidbz/ifrit/internal/provider/echo"
	"github.com/davidbz/ifrit/internal/provider/openai"
	"github.com/davidbz/ifrit/internal/provider/openaicompat"
	"github.com/davidbz/ifrit/internal/provider/registry"
	"github.com/davidbz/ifrit/internal/router"
	"github.com/davidbz/ifrit/internal/routing"
	"github.com/davidbz/ifrit/internal/stats"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(server *http.Server) {
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				log.Fatalf("Server failed to start: %v", err)
			}
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Fatalf("Server failed to shut down cleanly: %v", err)
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	// Configuration
	if err := container.Provide(config.Load); err != nil {
		log.Fatalf("Failed to provide config: %v", err)
	}
	if err := container.Provide(config.ParseDependenciesConfig); err != nil {
		log.Fatalf("Failed to provide config dependencies: %v", err)
	}

	// Observability
	if err := container.Provide(observability.InitLogger); err != nil {
		log.Fatalf("Failed to provide logger: %v", err)
	}

	// Provider Registry
	if err := container.Provide(buildRegistry); err != nil {
		log.Fatalf("Failed to provide registry: %v", err)
	}

	// Routing and stats
	if err := container.Provide(func(cfg *config.RouterConfig) *routing.Engine {
		return routing.NewEngine(time.Duration(cfg.LatencyBaselineMS) * time.Millisecond)
	}); err != nil {
		log.Fatalf("Failed to provide routing engine: %v", err)
	}
	if err := container.Provide(func() domain.StatsCollector {
		return stats.NewCollector()
	}); err != nil {
		log.Fatalf("Failed to provide stats collector: %v", err)
	}

	// Response cache (optional, disabled without a Redis address)
	if err := container.Provide(buildResponseCache); err != nil {
		log.Fatalf("Failed to provide response cache: %v", err)
	}

	// Router Service
	if err := container.Provide(func(
		reg domain.ProviderRegistry,
		engine *routing.Engine,
		collector domain.StatsCollector,
		respCache domain.ResponseCache,
		cfg *config.RouterConfig,
	) (*router.Service, error) {
		return router.NewService(reg, engine, collector, respCache, router.Config{
			DefaultStrategy: domain.Strategy(cfg.Strategy),
			MaxAttempts:     cfg.MaxAttempts,
			DefaultTimeout:  time.Duration(cfg.DefaultTimeout) * time.Second,
			CacheTTL:        time.Duration(cfg.CacheTTL) * time.Second,
		})
	}); err != nil {
		log.Fatalf("Failed to provide router service: %v", err)
	}

	// HTTP Layer
	if err := container.Provide(middleware.BuildMiddlewareChain); err != nil {
		log.Fatalf("Failed to provide middleware chain: %v", err)
	}
	if err := container.Provide(http.NewHandler); err != nil {
		log.Fatalf("Failed to provide HTTP handler: %v", err)
	}
	if err := container.Provide(http.NewServer); err != nil {
		log.Fatalf("Failed to provide HTTP server: %v", err)
	}

	return container
}

// buildRegistry registers every configured provider. Providers without a
// credential are registered disabled so they still show up in health reports.
func buildRegistry(cfg *config.Config) (domain.ProviderRegistry, error) {
	reg := registry.NewRegistry()

	openaiConfig := domain.ProviderConfig{
		ID:          "openai",
		DisplayName: "OpenAI",
		Kind:        domain.AdapterOpenAI,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Priority:    cfg.OpenAI.Priority,
		Timeout:     time.Duration(cfg.OpenAI.Timeout) * time.Second,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	}
	if cfg.OpenAI.APIKey == "" {
		if err := reg.RegisterDisabled(openaiConfig); err != nil {
			return nil, err
		}
	} else {
		adapter, err := openai.NewAdapter(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(openaiConfig, adapter); err != nil {
			return nil, err
		}
	}

	anthropicConfig := domain.ProviderConfig{
		ID:          "anthropic",
		DisplayName: "Anthropic",
		Kind:        domain.AdapterAnthropic,
		Model:       cfg.Anthropic.Model,
		Priority:    cfg.Anthropic.Priority,
		Timeout:     time.Duration(cfg.Anthropic.Timeout) * time.Second,
		MaxTokens:   cfg.Anthropic.MaxTokens,
	}
	if cfg.Anthropic.APIKey == "" {
		if err := reg.RegisterDisabled(anthropicConfig); err != nil {
			return nil, err
		}
	} else {
		adapter, err := anthropic.NewAdapter(cfg.Anthropic)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(anthropicConfig, adapter); err != nil {
			return nil, err
		}
	}

	compatConfig := domain.ProviderConfig{
		ID:          cfg.Compat.Name,
		DisplayName: cfg.Compat.Name,
		Kind:        domain.AdapterOpenAICompat,
		BaseURL:     cfg.Compat.BaseURL,
		Model:       cfg.Compat.Model,
		Priority:    cfg.Compat.Priority,
		Timeout:     time.Duration(cfg.Compat.Timeout) * time.Second,
		MaxTokens:   cfg.Compat.MaxTokens,
	}
	if cfg.Compat.APIKey == "" {
		if err := reg.RegisterDisabled(compatConfig); err != nil {
			return nil, err
		}
	} else {
		adapter, err := openaicompat.NewAdapter(cfg.Compat)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(compatConfig, adapter); err != nil {
			return nil, err
		}
	}

	if cfg.Echo.Enabled {
		echoConfig := domain.ProviderConfig{
			ID:          "echo",
			DisplayName: "Echo",
			Kind:        domain.AdapterEcho,
			Priority:    cfg.Echo.Priority,
		}
		if err := reg.Register(echoConfig, echo.NewAdapter()); err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// buildResponseCache returns a Redis-backed cache, or nil when no Redis
// address is configured.
func buildResponseCache(cfg *config.RedisConfig) domain.ResponseCache {
	if cfg.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return rediscache.NewResponseCache(client)
}
