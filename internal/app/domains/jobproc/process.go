package jobproc

import (
	"context"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/uuid"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/mqx"
)

// GetProcess 返回核心处理函数（注入到 Processor）
func GetProcess(exec *Executor, log logger.Logger) mqx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) (resp *mqx.JobResp) {
		startTime := time.Now()

		// 注入 TraceID 到 Context
		ctx = context.WithValue(ctx, "trace_id", uuid.New().String())
		ctx = context.WithValue(ctx, "start_time", startTime)

		// 兜底：任何未捕获 panic 都不能压垮处理协程
		defer func() {
			if r := recover(); r != nil {
				log.Errorf(ctx, "[GetProcess] processing panic: %v", r)
				resp = &mqx.JobResp{Action: mqx.JobRespStatusRetry}
			}
		}()

		log.Infof(ctx, "[GetProcess] Processing dispatch message: %s", lmstfyJob.ID)

		resp = exec.Process(ctx, lmstfyJob.Data)

		duration := time.Since(startTime)
		log.Infof(ctx, "[GetProcess] Processing complete: action=%d, duration=%v", resp.Action, duration)

		return resp
	}
}
