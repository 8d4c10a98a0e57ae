package anthropic

// Config contains Anthropic provider configuration. An empty APIKey disables
// the provider at startup.
type Config struct {
	APIKey      string  `env:"ANTHROPIC_API_KEY"`
	Model       string  `env:"ANTHROPIC_MODEL"       envDefault:"claude-3-5-haiku-20241022"`
	Priority    int     `env:"ANTHROPIC_PRIORITY"    envDefault:"2"`
	Timeout     int     `env:"ANTHROPIC_TIMEOUT"     envDefault:"30"`
	MaxTokens   int     `env:"ANTHROPIC_MAX_TOKENS"  envDefault:"1024"`
	Temperature float64 `env:"ANTHROPIC_TEMPERATURE" envDefault:"0.7"`
}
