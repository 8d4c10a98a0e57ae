package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/ifrit/internal/config"
)

// CORS applies the configured cross-origin policy via github.com/rs/cors,
// including preflight handling. A nil config leaves requests untouched.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	policy := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return policy.Handler
}
