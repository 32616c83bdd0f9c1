package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vsinha/divmrp/pkg/infrastructure/logging"
)

// RouterConfig configures the engine
type RouterConfig struct {
	Mode      string
	JWTSecret string
	// Ready reports whether dependencies are reachable; nil means always ready
	Ready func(ctx context.Context) error
}

// NewRouter builds the engine with every /api/v1 route behind JWT auth
func NewRouter(h *Handlers, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger = logging.OrNop(logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		if cfg.Ready != nil {
			if err := cfg.Ready(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	api.Use(JWTAuth(cfg.JWTSecret))
	{
		orders := api.Group("/manufacturing-orders")
		orders.POST("", h.Manufacturing.Create)
		orders.GET("/:id", h.Manufacturing.Get)
		orders.PATCH("/:id/status", h.Manufacturing.UpdateStatus)
		orders.POST("/:id/issue", h.Manufacturing.Issue)
		orders.POST("/:id/materials/:materialId/return", h.Manufacturing.ReturnMaterial)

		boms := api.Group("/boms")
		boms.GET("/:id", h.BOM.Get)
		boms.GET("/:id/explosion", h.BOM.Explosion)
		boms.POST("/:id/components", h.BOM.AddComponent)
		boms.DELETE("/:id/components/:componentId", h.BOM.RemoveComponent)
		boms.POST("/:id/activate", h.BOM.Activate)
		boms.POST("/:id/obsolete", h.BOM.Obsolete)

		transfers := api.Group("/inter-division-transfers")
		transfers.POST("", h.Transfer.Create)
		transfers.GET("/:id", h.Transfer.Get)
		transfers.POST("/:id/process", h.Transfer.Process)
		transfers.POST("/:id/cancel", h.Transfer.Cancel)

		api.POST("/calculate-price", h.Pricing.Calculate)
		api.GET("/item-pricing", h.Pricing.Get)

		inventory := api.Group("/inventory")
		inventory.GET("", h.Inventory.List)
		inventory.POST("/adjustments", h.Inventory.Adjust)
		inventory.GET("/movements", h.Inventory.Movements)
	}

	return router
}
