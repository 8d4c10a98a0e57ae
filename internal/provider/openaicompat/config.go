package openaicompat

// Config contains configuration for a generic OpenAI-compatible endpoint
// (OpenRouter, Groq, local inference servers). An empty APIKey disables the
// provider at startup.
type Config struct {
	Name      string `env:"COMPAT_NAME"       envDefault:"openai-compat"`
	APIKey    string `env:"COMPAT_API_KEY"`
	BaseURL   string `env:"COMPAT_BASE_URL"   envDefault:"https://openrouter.ai/api/v1"`
	Model     string `env:"COMPAT_MODEL"      envDefault:"meta-llama/llama-3.1-8b-instruct"`
	Priority  int    `env:"COMPAT_PRIORITY"   envDefault:"3"`
	Timeout   int    `env:"COMPAT_TIMEOUT"    envDefault:"30"`
	MaxTokens int    `env:"COMPAT_MAX_TOKENS" envDefault:"1024"`
}
