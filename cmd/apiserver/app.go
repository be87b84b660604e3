package main

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/config"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/modules/mddispatch"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpjob"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/repo/rpmember"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/domains/services/svprovision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/mq/lmstfy"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/persistence/mysql"
	redisinfra "github.com/MironAlikc/erpmax-orchestrator/internal/app/infra/persistence/redis"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/handlers/provision"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/server/routers"
)

// App 应用实例，聚合 HTTP 引擎与需要释放的资源
type App struct {
	Engine *gin.Engine
}

// InitializeApp 按依赖顺序装配应用：存储 → 队列 → 模块 → 服务 → 路由
func InitializeApp(cfg *config.Config, log logger.Logger) (*App, func(), error) {
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql failed: %w", err)
	}

	pubsub, err := redisinfra.NewPubSubClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		mysql.Close(db)
		return nil, nil, fmt.Errorf("connect redis failed: %w", err)
	}

	mq, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		pubsub.Close()
		mysql.Close(db)
		return nil, nil, fmt.Errorf("create lmstfy client failed: %w", err)
	}

	jobRepo := rpjob.NewJobRepository(db)
	memberRepo := rpmember.NewMemberRepository(db)
	dispatchModule := mddispatch.NewDispatchModule(mq, pubsub, cfg.Lmstfy.Queue)
	provisionService := svprovision.NewService(jobRepo, memberRepo, dispatchModule, log)
	provisionHandler := provision.NewProvisionHandler(provisionService, log)

	engine := routers.SetupRoutes(provisionHandler, log)

	cleanup := func() {
		pubsub.Close()
		mysql.Close(db)
	}

	return &App{Engine: engine}, cleanup, nil
}
