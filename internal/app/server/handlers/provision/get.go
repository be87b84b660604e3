package provision

import (
	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/response"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

// Get 获取任务详情接口
// GET /api/v1/provisioning/jobs/:id
// 创建任务返回 code=3001 时，通过此接口轮询结果
func (h *ProvisionHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		ginx.BadRequest(c, "job_id required")
		return
	}

	tenantID, userID := identity(c)
	job, err := h.provisionService.GetJob(c.Request.Context(), tenantID, userID, jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ginx.Success(c, response.FromJobEntity(job))
}
