package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/ifrit/internal/provider/anthropic"
	"github.com/davidbz/ifrit/internal/provider/openai"
	"github.com/davidbz/ifrit/internal/provider/openaicompat"
)

// Config represents the router configuration.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Router    RouterConfig
	Redis     RedisConfig
	OpenAI    openai.Config
	Anthropic anthropic.Config
	Compat    openaicompat.Config
	Echo      EchoConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"30"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RouterConfig contains selection and fallback settings.
type RouterConfig struct {
	// Strategy is the default selection strategy when a request does not
	// name one: priority, intelligent, round_robin or fastest.
	Strategy string `env:"ROUTER_STRATEGY" envDefault:"intelligent"`
	// MaxAttempts caps how many providers a single request may try.
	MaxAttempts int `env:"ROUTER_MAX_ATTEMPTS" envDefault:"3"`
	// DefaultTimeout is the per-provider call timeout in seconds, used
	// when a provider config carries no timeout of its own.
	DefaultTimeout int `env:"ROUTER_DEFAULT_TIMEOUT" envDefault:"30"`
	// LatencyBaselineMS switches the intelligent strategy's latency
	// normalization to a fixed reference (in milliseconds). Zero keeps the
	// default relative normalization against the fastest eligible provider.
	LatencyBaselineMS int `env:"ROUTER_LATENCY_BASELINE_MS" envDefault:"0"`
	// CacheTTL is the response cache TTL in seconds.
	CacheTTL int `env:"ROUTER_CACHE_TTL" envDefault:"3600"`
}

// RedisConfig contains Redis connection settings for the response cache.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// EchoConfig controls the local echo provider, useful for development and
// smoke testing without any upstream credentials.
type EchoConfig struct {
	Enabled  bool `env:"ECHO_ENABLED"  envDefault:"false"`
	Priority int  `env:"ECHO_PRIORITY" envDefault:"99"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	Server    *ServerConfig
	CORS      *CORSConfig
	Router    *RouterConfig
	Redis     *RedisConfig
	OpenAI    *openai.Config
	Anthropic *anthropic.Config
	Compat    *openaicompat.Config
	Echo      *EchoConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Router,
		&cfg.Redis,
		&cfg.OpenAI,
		&cfg.Anthropic,
		&cfg.Compat,
		&cfg.Echo,
	}
}
