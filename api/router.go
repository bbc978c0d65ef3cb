package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/use-agent/shelfscan/api/handler"
	"github.com/use-agent/shelfscan/api/middleware"
	"github.com/use-agent/shelfscan/config"
)

// Engine is the scraping backend the router serves.
type Engine interface {
	handler.ProductSearcher
	handler.ProductDescriber
	handler.SessionReporter
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:   Recovery → Logger
//	API:      Auth (if enabled) → RateLimit → SessionLimiter
//
// /health and /metrics sit outside auth so probes and scrapers always work.
func NewRouter(eng Engine, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	sessions := middleware.NewSessionLimiter(cfg.Server.MaxSessions, cfg.Server.SessionWait)

	r.GET("/health", handler.Health(eng, sessions, startTime))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	if cfg.Auth.Enabled {
		api.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	api.Use(middleware.RateLimit(cfg.RateLimit))
	api.Use(sessions.Middleware())

	api.GET("/products", handler.Search(eng, cfg.Scraper.MaxPagesLimit))
	api.GET("/product-description", handler.Describe(eng))

	return r
}
