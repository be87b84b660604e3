package jobproc

import (
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
)

// LifecycleEffect 任务流转对租户生命周期状态的副作用
type LifecycleEffect struct {
	OnStart    ettenant.TenantStatus // 任务进入执行态时写入
	OnComplete ettenant.TenantStatus // 任务成功完成时写入
}

// lifecycleEffects 任务类型 → 租户状态副作用映射表
// 显式表驱动：delete_site/backup_site 目前没有副作用，扩展策略只改这里，
// 不碰状态机本身。失败路径不回写租户状态（不做静默回滚）。
var lifecycleEffects = map[etjob.JobType]LifecycleEffect{
	etjob.TypeCreateSite: {
		OnStart:    ettenant.StatusProvisioning,
		OnComplete: ettenant.StatusActive,
	},
}

// EffectFor 查询任务类型的租户状态副作用
func EffectFor(jobType etjob.JobType) (LifecycleEffect, bool) {
	effect, ok := lifecycleEffects[jobType]
	return effect, ok
}
