package provision

import (
	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/response"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

// Retry 重试任务接口，仅终态任务可重试
// POST /api/v1/provisioning/jobs/:id/retry
func (h *ProvisionHandler) Retry(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		ginx.BadRequest(c, "job_id required")
		return
	}

	tenantID, userID := identity(c)
	job, err := h.provisionService.RetryJob(c.Request.Context(), tenantID, userID, jobID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ginx.Success(c, response.FromJobEntity(job))
}
