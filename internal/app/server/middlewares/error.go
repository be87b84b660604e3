package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 统一错误处理中间件，兜底未被 handler 消化的错误
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
		}
	}
}
