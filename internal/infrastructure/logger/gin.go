package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinMiddleware logs one line per request. It also seeds the request context
// with a request-scoped logger and the request id, so queries running under
// this request carry the id all the way down to the SQL log.
func GinMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		ctx, reqLogger := WithRequestID(c.Request.Context(), log.With(
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		), c.GetString("request_id"))
		c.Set("logger", reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("response_bytes", c.Writer.Size()),
		}
		if query != "" {
			fields = append(fields, zap.String("query", query))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("request handled", fields...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("request handled", fields...)
		default:
			reqLogger.Info("request handled", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 response instead of killing the
// process
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.String("request_id", c.GetString("request_id")),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", r),
					zap.Stack("stack"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request-scoped logger stored by GinMiddleware,
// or a no-op logger outside a request
func GetGinLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get("logger"); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}
