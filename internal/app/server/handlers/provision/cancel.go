package provision

import (
	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/response"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

// Cancel 取消任务接口（软取消）
// POST /api/v1/provisioning/jobs/:id/cancel
// 终态任务取消为幂等空操作，返回当前状态
func (h *ProvisionHandler) Cancel(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		ginx.BadRequest(c, "job_id required")
		return
	}

	tenantID, userID := identity(c)
	job, err := h.provisionService.CancelJob(c.Request.Context(), tenantID, userID, jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ginx.Success(c, response.FromJobEntity(job))
}
