package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbodji/fueltrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.APIHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/analyze", handler.Analyze)

		api.GET("/logs/:date", handler.GetDay)
		api.POST("/logs/:date/entries", handler.AddEntry)
		api.DELETE("/logs/:date/entries/:index", handler.RemoveEntry)

		api.GET("/hydration/:date", handler.GetHydration)
		api.POST("/hydration/:date", handler.AddWater)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.PutSettings)
		api.GET("/targets", handler.GetTargets)
		api.GET("/usage", handler.GetUsage)

		api.GET("/backup", handler.ExportBackup)
		api.POST("/restore", handler.ImportBackup)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
