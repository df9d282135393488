package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// pingRegistrar mounts a single ping route, standing in for a feature handler
type pingRegistrar struct{}

func (pingRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	New(engine).Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterRegisterChains(t *testing.T) {
	r := New(gin.New())
	require.Same(t, r, r.Register(pingRegistrar{}))
	require.Same(t, r, r.Version("v3"))
}

func TestRouterVersionPrefix(t *testing.T) {
	engine := gin.New()
	New(engine).Version("v2").Register(pingRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
