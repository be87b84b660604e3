package provision

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/request"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/response"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

// Create 创建开通任务接口
// POST /api/v1/provisioning/jobs?wait=10
// 携带 wait 参数时同步等待任务结果，超时则返回 3001 由客户端轮询
func (h *ProvisionHandler) Create(c *gin.Context) {
	wait := time.Duration(0)
	if waitStr := c.Query("wait"); waitStr != "" {
		if w, err := strconv.Atoi(waitStr); err == nil && w > 0 {
			wait = time.Duration(w) * time.Second
		}
	}

	var req request.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}

	tenantID, userID := identity(c)
	job, err := h.provisionService.CreateJob(c.Request.Context(), tenantID, userID, req.ToJobType(), wait)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if job.Status.IsTerminal() {
		ginx.Success(c, response.FromJobEntity(job))
		return
	}
	if wait > 0 {
		pollURL := fmt.Sprintf("/api/v1/provisioning/jobs/%s", job.ID)
		ginx.Processing(c, job.ID, pollURL)
		return
	}
	ginx.Created(c, response.FromJobEntity(job))
}
