package observability

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Process-wide logger. Loggers are not stored in context; context carries
// only the correlation fields that FromContext attaches per call site.
//
//nolint:gochecknoglobals // Singleton logger is a standard pattern
var (
	globalLogger *zap.Logger
	loggerMu     sync.RWMutex
)

// InitLogger initializes the base logger (called once at startup).
func InitLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerMu.Lock()
	globalLogger = logger
	loggerMu.Unlock()

	return logger, nil
}

func getBaseLogger() *zap.Logger {
	loggerMu.RLock()
	logger := globalLogger
	loggerMu.RUnlock()

	if logger == nil {
		// Not initialized yet, e.g. in tests.
		logger, _ = zap.NewProduction()
	}

	return logger
}

// FromContext returns the process logger with the request's correlation
// fields attached.
func FromContext(ctx context.Context) *zap.Logger {
	return getBaseLogger().With(contextFields(ctx)...)
}

// contextFields collects the correlation fields present on the context.
func contextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 5)

	for _, f := range []struct {
		key   string
		value string
	}{
		{"trace_id", GetTraceID(ctx)},
		{"span_id", GetSpanID(ctx)},
		{"request_id", GetRequestID(ctx)},
		{"provider", GetProvider(ctx)},
		{"strategy", GetStrategy(ctx)},
	} {
		if f.value != "" {
			fields = append(fields, zap.String(f.key, f.value))
		}
	}

	return fields
}
