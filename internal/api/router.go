// Package api wires the HTTP router: the WebSocket message channel,
// the same-origin translation API, and the owner admin API.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ban2lab/longanicore-gateway/internal/api/handlers"
	"github.com/ban2lab/longanicore-gateway/internal/config"
	"github.com/ban2lab/longanicore-gateway/internal/metrics"
	"github.com/ban2lab/longanicore-gateway/internal/middleware"
)

// Handlers collects the route handlers the router mounts.
type Handlers struct {
	Channel   *handlers.ChannelHandler
	Admin     *handlers.AdminHandler
	Translate *handlers.TranslateHandler
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.HTTPMetrics("/api/v1/channel"))
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// The cross-origin message channel. Credential checks happen
		// per message inside the gateway pipeline.
		v1.GET("/channel", h.Channel.Serve)

		// Same-origin API for the hosting page's own UI.
		v1.POST("/translate", h.Translate.Translate)
		v1.GET("/languages", h.Translate.Languages)

		v1.GET("/auth/status", middleware.GetAuthStatus(cfg.AdminKey))
		v1.POST("/auth/verify", middleware.VerifyAdminKey(cfg.AdminKey))

		admin := v1.Group("/admin")
		admin.Use(middleware.AdminKeyAuth(cfg.AdminKey))
		{
			admin.GET("/origins", h.Admin.ListOrigins)
			admin.POST("/origins", h.Admin.GenerateOriginKey)
			admin.DELETE("/origins", h.Admin.RemoveOrigin)

			admin.GET("/global-keys", h.Admin.ListGlobalKeys)
			admin.POST("/global-keys", h.Admin.AddGlobalKey)
			admin.DELETE("/global-keys", h.Admin.RemoveGlobalKey)

			admin.GET("/api-status", h.Admin.GetAPIStatus)
			admin.PUT("/api-status", h.Admin.SetAPIStatus)

			admin.GET("/connection-log", h.Admin.GetConnectionLog)
		}
	}

	return router
}
