package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func observedEngine() (*gin.Engine, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	})
	engine.Use(GinMiddleware(zap.New(core)))
	return engine, logs
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	engine, logs := observedEngine()
	engine.GET("/children/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/children/42?full=1", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.InfoLevel, entry.Level)
	assert.Equal(t, "request handled", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/children/42", fields["path"])
	assert.Equal(t, "full=1", fields["query"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestGinMiddleware_SeedsRequestContext(t *testing.T) {
	engine, logs := observedEngine()

	var seenID string
	engine.GET("/ctx", func(c *gin.Context) {
		seenID = GetRequestID(c.Request.Context())
		FromContext(c.Request.Context()).Info("from handler")
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ctx", nil))

	assert.Equal(t, "req-123", seenID)

	// The logger stored in the context writes to the observed core and
	// already carries the request id.
	entries := logs.FilterMessage("from handler").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	for _, tc := range []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusInternalServerError, "error"},
	} {
		engine, logs := observedEngine()
		engine.GET("/status", func(c *gin.Context) {
			c.Status(tc.status)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))

		require.Equal(t, 1, logs.Len(), "status %d", tc.status)
		assert.Equal(t, tc.level, logs.All()[0].Level.String(), "status %d", tc.status)
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	engine := gin.New()
	engine.Use(Recovery(zap.New(core)))
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "panic recovered", entry.Message)
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
}

func TestGetGinLogger(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	// Outside a request the accessor degrades to a no-op logger.
	assert.NotNil(t, GetGinLogger(c))

	log := zap.NewNop().With(zap.String("k", "v"))
	c.Set("logger", log)
	assert.Same(t, log, GetGinLogger(c))
}
