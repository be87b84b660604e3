package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/handlers/provision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/middlewares"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(
	provisionHandler *provision.ProvisionHandler,
	log logger.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "erpmax-orchestrator",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.Identity())
	{
		jobs := v1.Group("/provisioning/jobs")
		{
			jobs.POST("", provisionHandler.Create)
			jobs.GET("", provisionHandler.List)
			jobs.GET("/:id", provisionHandler.Get)
			jobs.POST("/:id/retry", provisionHandler.Retry)
			jobs.POST("/:id/cancel", provisionHandler.Cancel)
		}
	}

	return r
}
