package provision

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/services/svprovision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/middlewares"
)

// ProvisionHandler 开通任务 HTTP 处理器
type ProvisionHandler struct {
	provisionService *svprovision.Service
	logger           logger.Logger
}

// NewProvisionHandler 创建开通任务处理器实例
func NewProvisionHandler(provisionService *svprovision.Service, log logger.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		provisionService: provisionService,
		logger:           log,
	}
}

// identity 从 gin context 取身份信息，由 Identity 中间件注入
func identity(c *gin.Context) (tenantID, userID string) {
	return c.GetString(middlewares.CtxKeyTenantID), c.GetString(middlewares.CtxKeyUserID)
}

// writeError 按错误类型映射 HTTP 状态码
func (h *ProvisionHandler) writeError(c *gin.Context, err error) {
	switch {
	case errorx.IsValidation(err):
		ginx.BadRequest(c, err.Error())
	case errors.Is(err, errorx.ErrJobNotFound):
		ginx.NotFound(c, "job not found")
	case errors.Is(err, errorx.ErrNotMember), errors.Is(err, errorx.ErrForbidden):
		ginx.Forbidden(c, "insufficient permissions for this tenant")
	default:
		h.logger.Errorf(c.Request.Context(), "provision handler failed: %v", err)
		ginx.InternalError(c, "internal server error")
	}
}
