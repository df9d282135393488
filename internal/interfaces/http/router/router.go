package router

import (
	"github.com/gin-gonic/gin"
)

// Registrar attaches one feature's routes to the shared API group
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects feature registrars and mounts them under /api/<version>
type Router struct {
	engine   *gin.Engine
	version  string
	features []Registrar
}

// New creates a Router mounting at /api/v1
func New(engine *gin.Engine) *Router {
	return &Router{engine: engine, version: "v1"}
}

// Version overrides the API version prefix
func (r *Router) Version(version string) *Router {
	r.version = version
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(feature Registrar) *Router {
	r.features = append(r.features, feature)
	return r
}

// Setup mounts every registered feature on the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.version)
	for _, feature := range r.features {
		feature.RegisterRoutes(api)
	}
}
