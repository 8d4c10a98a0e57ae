package openai

// Config contains OpenAI provider configuration. An empty APIKey disables
// the provider at startup; it is excluded from the eligible set rather than
// failing at call time.
type Config struct {
	APIKey    string `env:"OPENAI_API_KEY"`
	BaseURL   string `env:"OPENAI_BASE_URL"    envDefault:"https://api.openai.com/v1"`
	Model     string `env:"OPENAI_MODEL"       envDefault:"gpt-4o-mini"`
	Priority  int    `env:"OPENAI_PRIORITY"    envDefault:"1"`
	Timeout   int    `env:"OPENAI_TIMEOUT"     envDefault:"30"`
	MaxTokens int    `env:"OPENAI_MAX_TOKENS"  envDefault:"1024"`
}
