package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestIDEngine() (*gin.Engine, *string, *string) {
	var ctxID, logID string
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) {
		ctxID = c.GetString(RequestIDHeader)
		logID = c.GetString("request_id")
		c.Status(http.StatusOK)
	})
	return engine, &ctxID, &logID
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	engine, ctxID, logID := requestIDEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	id := w.Header().Get(RequestIDHeader)
	// 8 random bytes, hex encoded.
	assert.Len(t, id, 16)
	assert.Equal(t, id, *ctxID)
	assert.Equal(t, id, *logID)
}

func TestRequestID_KeepsIncomingHeader(t *testing.T) {
	engine, ctxID, _ := requestIDEngine()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "upstream-42", *ctxID)
}

func TestGenerateRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := generateRequestID()
		require.Len(t, id, 16)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func corsEngine(cfg CORSConfig) *gin.Engine {
	engine := gin.New()
	engine.Use(CORSWithConfig(cfg))
	engine.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestCORS_DefaultRejectsCrossOrigin(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// No origins configured: the request goes through but gets no CORS
	// headers, so the browser blocks the response.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example"}
	engine := corsEngine(cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example"}
	engine := corsEngine(cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://other.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardWithoutCredentials(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}
	cfg.AllowCredentials = false
	engine := corsEngine(cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}
	engine := corsEngine(cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// Credentialed requests may not use the wildcard form.
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.example"}
	cfg.MaxAge = time.Hour
	engine := corsEngine(cfg)

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}
