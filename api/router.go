package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/spindle/api/handler"
	"github.com/use-agent/spindle/api/middleware"
	"github.com/use-agent/spindle/config"
	"github.com/use-agent/spindle/spider"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sp *spider.Spider, settings *config.ServerSettings, startTime time.Time) *gin.Engine {
	gin.SetMode(settings.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", handler.Health(startTime))

	v1 := r.Group("/api/v1")
	if settings.AuthEnabled {
		v1.Use(middleware.Auth(settings.APIKeys))
	}
	v1.Use(middleware.RateLimit(settings.RateRPS, settings.RateBurst))

	v1.POST("/crawl", handler.Crawl(sp))
	v1.POST("/batch", handler.PostBatch(sp))
	v1.GET("/batch/:id", handler.GetBatch())

	return r
}
