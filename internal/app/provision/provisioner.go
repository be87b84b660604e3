package provision

import (
	"context"
	"fmt"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
)

// ReportFunc 进度上报回调
// 执行器负责把进度落库并发布状态事件；返回错误时执行单元必须立即终止
type ReportFunc func(progress int, message string) error

// Provisioner 可插拔执行单元
// 约定：至少上报一次中间进度；返回的 siteURL 仅 create_site 有值
type Provisioner interface {
	Run(ctx context.Context, job *etjob.Job, tenant *ettenant.Tenant, report ReportFunc) (siteURL string, err error)
}

// Registry 任务类型到执行单元的路由表（封闭集合）
// 新增任务类型需要同时补全 etjob.JobType 与这里的表项，编译期即可发现遗漏
type Registry map[etjob.JobType]Provisioner

// Lookup 查找任务类型对应的执行单元
func (r Registry) Lookup(jobType etjob.JobType) (Provisioner, error) {
	p, ok := r[jobType]
	if !ok {
		return nil, fmt.Errorf("no provisioner registered for job type %s", jobType)
	}
	return p, nil
}
