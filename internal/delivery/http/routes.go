package http

import (
	"github.com/gin-gonic/gin"
	"github.com/kepacart/backend/config"
	"github.com/kepacart/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	SetupValidator()

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(logger.Recovery(log))
	router.Use(logger.GinMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(NoIndexMiddleware())
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP)))
	{
		v1.GET("/search", handler.Search)

		products := v1.Group("/products")
		{
			products.POST("", handler.RegisterProduct)
			products.GET("", handler.ListProducts)
			products.GET("/:barcode", handler.GetProduct)
		}
	}

	return router
}
