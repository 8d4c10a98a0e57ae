package observability

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Trace assigns correlation IDs to every request, exposes them as response
// headers, and logs the request lifecycle with its duration.
func Trace() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := GenerateTraceID()
			requestID := GenerateRequestID()

			ctx := WithTraceID(r.Context(), traceID)
			ctx = WithSpanID(ctx, GenerateSpanID())
			ctx = WithRequestID(ctx, requestID)

			w.Header().Set("X-Trace-Id", traceID)
			w.Header().Set("X-Request-Id", requestID)

			logger := FromContext(ctx)
			logger.Info("request started",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)

			next.ServeHTTP(w, r.WithContext(ctx))

			logger.Info("request finished",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
