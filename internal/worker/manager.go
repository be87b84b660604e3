package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"
	"gorm.io/gorm"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/config"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/jobproc"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rptenant"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/mq/lmstfy"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/persistence/mysql"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/persistence/redis"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/notify"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/provision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/worker/framework"
)

// Manager 接口
type Manager interface {
	Start() error
	Shutdown()
}

// ManagerInstance Manager 实例
// 持有进程级长连接（MQ/DB/Redis），显式 start/drain/shutdown 生命周期，
// 不依赖任何包级全局状态
type ManagerInstance struct {
	ctx          context.Context
	cfg          *config.Config
	lmstfyClient *lmstfy.Client
	db           *gorm.DB
	pubsubClient *redis.PubSubClient
	workers      []Worker
	closing      *atomic.Bool
	shutdownCh   chan struct{}
	wg           sync.WaitGroup
	logger       logger.Logger
}

// NewManagerInstance 创建 Manager，完成全部依赖装配
func NewManagerInstance(cfg *config.Config, log logger.Logger) (Manager, error) {
	ctx := context.Background()

	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create lmstfy client: %w", err)
	}

	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}

	pubsubClient, err := redis.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis pubsub client: %w", err)
	}

	notifier := notify.NewNotifier(pubsubClient, log)
	registry := provision.DefaultRegistry(cfg.Provision.BaseDomain, cfg.Provision.StepDelay)
	executor := jobproc.NewExecutor(
		rpjob.NewJobRepository(db),
		rptenant.NewTenantRepository(db),
		notifier,
		registry,
		log,
	)

	m := &ManagerInstance{
		ctx:          ctx,
		cfg:          cfg,
		lmstfyClient: lmstfyClient,
		db:           db,
		pubsubClient: pubsubClient,
		closing:      atomic.NewBool(false),
		shutdownCh:   make(chan struct{}),
		workers:      make([]Worker, 0),
		logger:       log,
	}

	if err := m.loadWorkers(executor); err != nil {
		return nil, fmt.Errorf("failed to load workers: %w", err)
	}

	return m, nil
}

// Start 启动 Manager
func (m *ManagerInstance) Start() error {
	m.logger.Infof(m.ctx, "[Manager] Starting, worker count: %d", len(m.workers))

	for _, worker := range m.workers {
		w := worker
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			w.Start()
		}()
		m.logger.Infof(m.ctx, "[Manager] Worker started: %s", w.GetName())
	}

	m.logger.Infof(m.ctx, "[Manager] Start success")

	<-m.shutdownCh

	return nil
}

// Shutdown 优雅退出
func (m *ManagerInstance) Shutdown() {
	m.logger.Infof(m.ctx, "[Manager] Began to close")

	// 原子操作，保证并发安全
	if m.closing.CAS(false, true) {
		for _, worker := range m.workers {
			m.logger.Infof(m.ctx, "[Manager] Shutting down worker: %s", worker.GetName())
			worker.Shutdown()
		}

		m.wg.Wait()

		if err := m.pubsubClient.Close(); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close redis failed: %v", err)
		}

		if err := mysql.Close(m.db); err != nil {
			m.logger.Warnf(m.ctx, "[Manager] close mysql failed: %v", err)
		}

		close(m.shutdownCh)

		m.logger.Infof(m.ctx, "[Manager] Shutdown complete")
	}
}

// loadWorkers 按配置装配所有 Worker
func (m *ManagerInstance) loadWorkers(executor *jobproc.Executor) error {
	for _, workerCfg := range m.cfg.Workers {
		queueName := workerCfg.QueueName
		if queueName == "" {
			queueName = m.cfg.Lmstfy.Queue
		}

		subCfg := &framework.SubscriberConfig{
			QueueName:    queueName,
			Concurrency:  workerCfg.Subscriber.Threads,
			Rate:         workerCfg.Subscriber.Rate,
			Timeout:      workerCfg.Subscriber.Timeout,
			TTR:          workerCfg.Subscriber.TTR,
			ErrorBackoff: workerCfg.Subscriber.ErrorBackoff,
		}

		procCfg := &framework.ProcessorConfig{
			Concurrency: workerCfg.Processor.Threads,
			BufferSize:  workerCfg.Processor.BufferSize,
			Timeout:     workerCfg.Processor.Timeout,
		}

		getProcess := jobproc.GetProcess(executor, m.logger)

		worker, err := NewWorkerInstance(
			m.ctx,
			workerCfg.Name,
			subCfg,
			procCfg,
			m.lmstfyClient, // MessageSource
			getProcess,
			m.logger,
		)
		if err != nil {
			return fmt.Errorf("failed to create worker %s: %w", workerCfg.Name, err)
		}

		m.workers = append(m.workers, worker)
	}

	return nil
}
