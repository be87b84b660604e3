package provision

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/apimodel/response"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/ginx"
)

// List 任务列表接口，按创建时间倒序分页
// GET /api/v1/provisioning/jobs?limit=20&offset=0
func (h *ProvisionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	tenantID, userID := identity(c)
	jobs, total, err := h.provisionService.ListJobs(c.Request.Context(), tenantID, userID, limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	ginx.Success(c, &response.JobListResponse{
		Jobs: response.FromJobEntities(jobs),
		Pagination: response.Pagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	})
}
