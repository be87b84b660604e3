package svprovision

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/entity/etjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/modules/mddispatch"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpmember"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/errorx"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
)

// Service 开通任务服务（Dispatcher 编排层）
// 写操作要求 owner/admin 角色，读操作任意成员可用
type Service struct {
	jobRepo    rpjob.JobRepository
	memberRepo rpmember.MemberRepository
	dispatch   *mddispatch.DispatchModule
	logger     logger.Logger
}

// NewService 创建开通任务服务实例
func NewService(
	jobRepo rpjob.JobRepository,
	memberRepo rpmember.MemberRepository,
	dispatch *mddispatch.DispatchModule,
	log logger.Logger,
) *Service {
	return &Service{
		jobRepo:    jobRepo,
		memberRepo: memberRepo,
		dispatch:   dispatch,
		logger:     log,
	}
}

// CreateJob 创建任务并投递
// 流程：鉴权 → 落库 pending → 发布投递消息 →（可选）Smart Wait 等待终态
// 发布失败时任务保留为孤儿 pending（接受的一致性缺口），恢复手段是人工重试
func (s *Service) CreateJob(ctx context.Context, tenantID, userID string, jobType etjob.JobType, wait time.Duration) (*etjob.Job, error) {
	if err := s.requireManage(ctx, tenantID, userID); err != nil {
		return nil, err
	}

	job, err := etjob.NewJob(uuid.New().String(), tenantID, jobType)
	if err != nil {
		return nil, errorx.NewValidationError("invalid job: %v", err)
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, err
	}

	if err := s.dispatch.PublishDispatch(ctx, job.ID); err != nil {
		s.logger.Warnf(ctx, "[Provision] publish dispatch failed, job %s left pending: %v", job.ID, err)
		return nil, err
	}

	if wait > 0 {
		if event, werr := s.dispatch.WaitForResult(ctx, job.ID, wait); werr != nil {
			// 超时或订阅失败：返回 pending 任务，调用方降级为轮询
			s.logger.Warnf(ctx, "[Provision] wait for result failed: job_id=%s, error=%v", job.ID, werr)
		} else if event != nil {
			if fresh, gerr := s.jobRepo.GetByID(ctx, job.ID); gerr == nil {
				return fresh, nil
			}
		}
	}

	return job, nil
}

// GetJob 查询任务（任意成员）
func (s *Service) GetJob(ctx context.Context, tenantID, userID, jobID string) (*etjob.Job, error) {
	if err := s.requireMember(ctx, tenantID, userID); err != nil {
		return nil, err
	}
	return s.getTenantJob(ctx, tenantID, jobID)
}

// ListJobs 查询任务列表，created_at 倒序（任意成员）
func (s *Service) ListJobs(ctx context.Context, tenantID, userID string, limit, offset int) ([]*etjob.Job, int64, error) {
	if err := s.requireMember(ctx, tenantID, userID); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.jobRepo.List(ctx, tenantID, limit, offset)
}

// RetryJob 重试终态任务：重置为 pending 后重新投递
// pending/running 任务已在途，重试返回校验错误
func (s *Service) RetryJob(ctx context.Context, tenantID, userID, jobID string) (*etjob.Job, error) {
	if err := s.requireManage(ctx, tenantID, userID); err != nil {
		return nil, err
	}

	job, err := s.getTenantJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.ResetForRetry(); err != nil {
		return nil, errorx.NewValidationError("%v", err)
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, err
	}

	if err := s.dispatch.PublishDispatch(ctx, job.ID); err != nil {
		s.logger.Warnf(ctx, "[Provision] publish dispatch failed, job %s left pending: %v", job.ID, err)
		return nil, err
	}

	return job, nil
}

// CancelJob 软取消：标记终态但不中断执行中的 Worker
// 终态任务取消为幂等空操作，原样返回
func (s *Service) CancelJob(ctx context.Context, tenantID, userID, jobID string) (*etjob.Job, error) {
	if err := s.requireManage(ctx, tenantID, userID); err != nil {
		return nil, err
	}

	job, err := s.getTenantJob(ctx, tenantID, jobID)
	if err != nil {
		return nil, err
	}

	if !job.Cancel() {
		return job, nil
	}

	// 条件更新：Worker 若已抢先提交终态，放弃取消并返回最新状态
	ok, err := s.jobRepo.UpdateFromStatus(ctx, job, etjob.StatusPending, etjob.StatusRunning)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Infof(ctx, "[Provision] cancel lost race with worker commit: job_id=%s", job.ID)
		return s.jobRepo.GetByID(ctx, job.ID)
	}

	return job, nil
}

// getTenantJob 读取任务并校验归属；跨租户访问一律报任务不存在
func (s *Service) getTenantJob(ctx context.Context, tenantID, jobID string) (*etjob.Job, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.TenantID != tenantID {
		return nil, errorx.ErrJobNotFound
	}
	return job, nil
}

// requireManage 写操作鉴权：要求 owner/admin
func (s *Service) requireManage(ctx context.Context, tenantID, userID string) error {
	role, err := s.memberRepo.Role(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if !role.CanManageJobs() {
		return errorx.ErrForbidden
	}
	return nil
}

// requireMember 读操作鉴权：任意成员
func (s *Service) requireMember(ctx context.Context, tenantID, userID string) error {
	_, err := s.memberRepo.Role(ctx, tenantID, userID)
	return err
}
