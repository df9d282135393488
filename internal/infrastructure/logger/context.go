package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
)

// WithContext stores the logger on the context
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored on the context, or a no-op logger
// outside a request
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithRequestID tags both the context and the logger with the request id
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	log = log.With(zap.String("request_id", requestID))
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	return WithContext(ctx, log), log
}

// GetRequestID returns the request id stored on the context, or the empty
// string
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
