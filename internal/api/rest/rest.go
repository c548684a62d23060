package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/safient/safient-escrow/internal/api/middleware"
)

// RouteConfig holds the middleware configuration of the REST routes
type RouteConfig struct {
	Auth       middleware.AuthConfig
	CronSecret string
	// ProtectReads puts Auth in front of the transfer read routes when credentials are configured
	ProtectReads bool
	// RateLimiter guards the mutating transfer routes. Nil disables rate limiting.
	RateLimiter *middleware.RateLimiter
}

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, cfg RouteConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	limited := []gin.HandlerFunc{}
	if cfg.RateLimiter != nil {
		limited = append(limited, cfg.RateLimiter.Middleware())
	}
	withLimit := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, limited...), h)
	}

	reads := []gin.HandlerFunc{}
	if cfg.ProtectReads && cfg.Auth.Enabled() {
		reads = append(reads, middleware.Auth(cfg.Auth))
	}
	withReadAuth := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, reads...), h)
	}

	v1 := router.Group("/api/v1")
	{
		// Transfer endpoints. The sender secret authorizes mutations; reads are optionally guarded.
		v1.POST("/transfers", withLimit(handler.CreateTransfer)...)
		v1.GET("/transfers", withReadAuth(handler.ListTransfers)...)
		v1.GET("/transfers/:id", withReadAuth(handler.GetTransfer)...)
		v1.GET("/transfers/:id/history", withReadAuth(handler.GetTransferHistory)...)
		v1.POST("/transfers/:id/reclaim", withLimit(handler.ReclaimTransfer)...)
		v1.POST("/transfers/:id/release", withLimit(handler.ReleaseTransfer)...)

		// Sweep trigger for external cron (cron secret, API key or JWT)
		cron := middleware.CronAuth(cfg.CronSecret, cfg.Auth)
		v1.GET("/sweep", cron, handler.Sweep)
		v1.POST("/sweep", cron, handler.Sweep)
	}
}
