package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prodsnap/prodsnap/models"
)

// StatusSource reports which acquisition stages are usable.
type StatusSource interface {
	ProxyPoolSize() int
	UnlockerEnabled() bool
}

// Health returns a handler for GET /api/v1/health.
func Health(src StatusSource, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:          "healthy",
			Uptime:          time.Since(startTime).Round(time.Second).String(),
			Version:         "0.1.0",
			ProxyPoolSize:   src.ProxyPoolSize(),
			UnlockerEnabled: src.UnlockerEnabled(),
		})
	}
}
