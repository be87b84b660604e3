package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

const (
	headerTenantID = "X-Tenant-ID"
	headerUserID   = "X-User-ID"

	// CtxKeyTenantID handler 从 gin context 取租户标识的 key
	CtxKeyTenantID = "tenant_id"
	// CtxKeyUserID handler 从 gin context 取用户标识的 key
	CtxKeyUserID = "user_id"
)

// Identity 身份中间件，从请求头提取租户和用户标识
// 两个头都必须携带，缺失则拒绝请求
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(headerTenantID)
		userID := c.GetHeader(headerUserID)
		if tenantID == "" || userID == "" {
			ginx.BadRequest(c, "missing X-Tenant-ID or X-User-ID header")
			c.Abort()
			return
		}

		c.Set(CtxKeyTenantID, tenantID)
		c.Set(CtxKeyUserID, userID)
		c.Next()
	}
}
