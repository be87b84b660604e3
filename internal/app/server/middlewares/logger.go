package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
)

// Logger 请求日志中间件，记录方法、路径、状态码与耗时
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.Infof(c.Request.Context(), "%s %s status=%d cost=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
