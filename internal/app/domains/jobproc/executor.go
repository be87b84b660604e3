package jobproc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/ettenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rptenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/notify"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/mqx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/provision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/common/model"
)

// errSuperseded 任务在执行期间被并发方（用户取消）改写，本次执行结果作废
var errSuperseded = errors.New("job state superseded by concurrent writer")

// Executor 任务执行器：驱动单条投递消息走完状态机
// 所有写入都走条件更新（读-改-写 + WHERE status 守护），不做盲写
type Executor struct {
	jobRepo    rpjob.JobRepository
	tenantRepo rptenant.TenantRepository
	notifier   *notify.Notifier
	registry   provision.Registry
	logger     logger.Logger
}

// NewExecutor 创建任务执行器
func NewExecutor(
	jobRepo rpjob.JobRepository,
	tenantRepo rptenant.TenantRepository,
	notifier *notify.Notifier,
	registry provision.Registry,
	log logger.Logger,
) *Executor {
	return &Executor{
		jobRepo:    jobRepo,
		tenantRepo: tenantRepo,
		notifier:   notifier,
		registry:   registry,
		logger:     log,
	}
}

// Process 处理一条投递消息
// ACK 语义：返回 Success/Drop 时 Processor 确认消息；Retry 时不确认，
// TTR 到期后重投，由幂等守护决定是否跳过
func (e *Executor) Process(ctx context.Context, data []byte) *mqx.JobResp {
	// 1. 解析信封；非法消息无限重试没有意义，直接丢弃
	var msg model.DispatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		e.logger.Warnf(ctx, "[Executor] invalid dispatch message: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}
	if msg.JobID == "" {
		e.logger.Warnf(ctx, "[Executor] dispatch message missing job_id")
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	ctx = context.WithValue(ctx, "job_id", msg.JobID)

	// 2. 回读任务最新状态
	job, err := e.jobRepo.GetByID(ctx, msg.JobID)
	if err != nil {
		if errors.Is(err, errorx.ErrJobNotFound) {
			// 任务已不存在（如租户级联删除），丢弃
			e.logger.Warnf(ctx, "[Executor] job not found: %s", msg.JobID)
			return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
		}
		e.logger.Errorf(ctx, "[Executor] load job failed: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusRetry}
	}

	ctx = context.WithValue(ctx, "tenant_id", job.TenantID)

	// 3. 幂等守护：重复投递（上一个消费者完成后未及 ACK）直接跳过
	if !job.Dispatchable() {
		e.logger.Infof(ctx, "[Executor] skipping job %s with status %s", job.ID, job.Status)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	return e.execute(ctx, job)
}

// execute 驱动 pending/failed → running → 终态
func (e *Executor) execute(ctx context.Context, job *etjob.Job) *mqx.JobResp {
	// 4. 进入执行态。条件更新兜住两个 Worker 同时拿到同一任务的窄窗口：
	// 只有一个能把 pending/failed 翻成 running，输者跳过
	if err := job.Start(time.Now()); err != nil {
		e.logger.Warnf(ctx, "[Executor] start rejected: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}
	ok, err := e.jobRepo.UpdateFromStatus(ctx, job, etjob.StatusPending, etjob.StatusFailed)
	if err != nil {
		e.logger.Errorf(ctx, "[Executor] persist running failed: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusRetry}
	}
	if !ok {
		e.logger.Infof(ctx, "[Executor] job %s taken by concurrent worker, skipping", job.ID)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	e.notifier.PublishStatus(ctx, job.TenantID, job.ID, string(job.Status), job.Progress, job.Message)

	// 租户生命周期副作用（表驱动），失败只记日志，不阻断任务
	tenant := e.loadTenant(ctx, job.TenantID)
	effect, hasEffect := EffectFor(job.JobType)
	if hasEffect && effect.OnStart != "" {
		if err := e.tenantRepo.UpdateStatus(ctx, job.TenantID, effect.OnStart); err != nil {
			e.logger.Warnf(ctx, "[Executor] set tenant status %s failed: %v", effect.OnStart, err)
		}
	}

	// 5. 执行单元，进度回调负责落库 + 推送
	siteURL, runErr := e.runProvisioner(ctx, job, tenant)

	if errors.Is(runErr, errSuperseded) {
		// 用户取消赢得竞争，本次执行结果作废
		e.logger.Warnf(ctx, "[Executor] job %s superseded during execution, discarding result", job.ID)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	// 终态提交脱离单条消息的超时上下文：执行超时本身就是要落 failed 的场景，
	// 若沿用已过期的 ctx，终态写入必然失败，任务会卡死在 running
	commitCtx := context.WithoutCancel(ctx)

	if runErr != nil {
		return e.commitFailed(commitCtx, job, runErr)
	}
	return e.commitCompleted(commitCtx, job, effect, hasEffect, siteURL)
}

// runProvisioner 调起执行单元，panic 一律转为执行失败，绝不压垮 Worker 进程
func (e *Executor) runProvisioner(ctx context.Context, job *etjob.Job, tenant *ettenant.Tenant) (siteURL string, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf(ctx, "[Executor] provisioner panic: %v", r)
			err = fmt.Errorf("provisioner panic: %v", r)
		}
	}()

	p, err := e.registry.Lookup(job.JobType)
	if err != nil {
		return "", err
	}

	report := func(progress int, message string) error {
		if err := job.Checkpoint(progress, message); err != nil {
			return err
		}
		ok, err := e.jobRepo.UpdateFromStatus(ctx, job, etjob.StatusRunning)
		if err != nil {
			return err
		}
		if !ok {
			return errSuperseded
		}
		e.notifier.PublishStatus(ctx, job.TenantID, job.ID, string(job.Status), job.Progress, job.Message)
		return nil
	}

	return p.Run(ctx, job, tenant, report)
}

// commitCompleted 成功路径的终态提交：completed + 租户激活 + 完成事件
func (e *Executor) commitCompleted(ctx context.Context, job *etjob.Job, effect LifecycleEffect, hasEffect bool, siteURL string) *mqx.JobResp {
	if err := job.Complete(time.Now()); err != nil {
		e.logger.Errorf(ctx, "[Executor] complete rejected: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}
	if siteURL != "" {
		job.Result = &etjob.JobResult{SiteURL: siteURL}
	}

	// 终态写入前重查状态：不允许用执行结果覆盖已被取消的任务
	ok, err := e.jobRepo.UpdateFromStatus(ctx, job, etjob.StatusRunning)
	if err != nil {
		e.logger.Errorf(ctx, "[Executor] persist completed failed: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusRetry}
	}
	if !ok {
		e.logger.Warnf(ctx, "[Executor] job %s cancelled before completion commit, discarding result", job.ID)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	if hasEffect {
		if siteURL != "" {
			if err := e.tenantRepo.UpdateSiteURL(ctx, job.TenantID, siteURL); err != nil {
				e.logger.Warnf(ctx, "[Executor] record site url failed: %v", err)
			}
		}
		if effect.OnComplete != "" {
			if err := e.tenantRepo.UpdateStatus(ctx, job.TenantID, effect.OnComplete); err != nil {
				e.logger.Warnf(ctx, "[Executor] set tenant status %s failed: %v", effect.OnComplete, err)
			}
		}
	}

	e.notifier.PublishCompleted(ctx, job.TenantID, job.ID, siteURL)
	e.logger.Infof(ctx, "[Executor] job completed: %s", job.ID)

	return &mqx.JobResp{Action: mqx.JobRespStatusSuccess}
}

// commitFailed 失败路径的终态提交：failed + 失败事件
// 租户状态保持原样（provisioning 不回滚），留给重试或人工处理
func (e *Executor) commitFailed(ctx context.Context, job *etjob.Job, runErr error) *mqx.JobResp {
	job.Fail(time.Now(), runErr.Error())

	ok, err := e.jobRepo.UpdateFromStatus(ctx, job, etjob.StatusRunning)
	if err != nil {
		e.logger.Errorf(ctx, "[Executor] persist failed state failed: %v", err)
		return &mqx.JobResp{Action: mqx.JobRespStatusRetry}
	}
	if !ok {
		e.logger.Warnf(ctx, "[Executor] job %s cancelled before failure commit", job.ID)
		return &mqx.JobResp{Action: mqx.JobRespStatusDrop}
	}

	e.notifier.PublishFailed(ctx, job.TenantID, job.ID, job.Error)
	e.logger.Errorf(ctx, "[Executor] job failed: %s, error: %s", job.ID, job.Error)

	return &mqx.JobResp{Action: mqx.JobRespStatusSuccess}
}

// loadTenant 读取租户，不存在时容忍为 nil（任务照常执行，副作用跳过）
func (e *Executor) loadTenant(ctx context.Context, tenantID string) *ettenant.Tenant {
	tenant, err := e.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, errorx.ErrTenantNotFound) {
			e.logger.Warnf(ctx, "[Executor] load tenant failed: %v", err)
		}
		return nil
	}
	return tenant
}
