package provision

import (
	"context"
	"fmt"
	"time"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
)

// SiteProvisioner 模拟站点执行单元
// 真实的 ERPNext 站点操作由外部系统承接，这里按约定上报中间进度并返回站点地址，
// 便于联调完整的任务链路
type SiteProvisioner struct {
	baseDomain string
	stepDelay  time.Duration
	action     string
}

// NewSiteProvisioner 创建站点执行单元
// action 取值 create/delete/backup，决定是否产出站点地址
func NewSiteProvisioner(action, baseDomain string, stepDelay time.Duration) *SiteProvisioner {
	return &SiteProvisioner{
		baseDomain: baseDomain,
		stepDelay:  stepDelay,
		action:     action,
	}
}

// Run 执行站点操作
func (p *SiteProvisioner) Run(ctx context.Context, job *etjob.Job, tenant *ettenant.Tenant, report ReportFunc) (string, error) {
	if err := p.sleep(ctx); err != nil {
		return "", err
	}

	if err := report(70, "Processing"); err != nil {
		return "", err
	}

	if err := p.sleep(ctx); err != nil {
		return "", err
	}

	if p.action != "create" {
		return "", nil
	}

	slug := job.TenantID
	if tenant != nil && tenant.Slug != "" {
		slug = tenant.Slug
	}
	return fmt.Sprintf("https://%s.%s", slug, p.baseDomain), nil
}

// sleep 模拟耗时步骤，尊重取消/超时
func (p *SiteProvisioner) sleep(ctx context.Context) error {
	if p.stepDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(p.stepDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DefaultRegistry 默认执行单元路由表
func DefaultRegistry(baseDomain string, stepDelay time.Duration) Registry {
	return Registry{
		etjob.TypeCreateSite: NewSiteProvisioner("create", baseDomain, stepDelay),
		etjob.TypeDeleteSite: NewSiteProvisioner("delete", baseDomain, stepDelay),
		etjob.TypeBackupSite: NewSiteProvisioner("backup", baseDomain, stepDelay),
	}
}
