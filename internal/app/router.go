package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"cabs/internal/handler"
	"cabs/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TransitHandler      *handler.TransitHandler
	DriverReportHandler *handler.DriverReportHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	Logger              *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicErrors())
	}

	var idempotencyStore redis.Cmdable
	if deps.RedisClient != nil {
		idempotencyStore = deps.RedisClient
	}
	router.Use(middleware.IdempotencyMiddleware(idempotencyStore, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		transits := v1.Group("/transits")
		{
			transits.POST("", deps.TransitHandler.CreateTransit)
			transits.GET("/:id", deps.TransitHandler.GetTransit)
			transits.POST("/:id/estimate", deps.TransitHandler.EstimateCost)
			transits.GET("/:id/final-cost", deps.TransitHandler.CalculateFinalCost)
			transits.POST("/:id/complete", deps.TransitHandler.CompleteTransit)
			transits.POST("/:id/cancel", deps.TransitHandler.CancelTransit)
		}
	}

	router.GET("/driverreport/:driverId", deps.DriverReportHandler.GetReport)

	return router
}
