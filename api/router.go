// Package api assembles the HTTP surface: the acquire endpoint, health, and
// Prometheus metrics, with auth and rate limiting on the protected routes.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prodsnap/prodsnap/api/handler"
	"github.com/prodsnap/prodsnap/api/middleware"
	"github.com/prodsnap/prodsnap/config"
)

// Orchestrator is everything the router needs from the acquisition layer.
type Orchestrator interface {
	handler.Acquirer
	handler.StatusSource
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health and metrics are intentionally outside auth so monitoring probes
// always work.
func NewRouter(orch Orchestrator, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(orch, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/acquire", handler.Acquire(orch))

	return r
}
