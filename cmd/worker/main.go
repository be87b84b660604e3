package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MironAlikc/erpmax-orchestrator/internal/app/config"
	"github.com/MironAlikc/erpmax-orchestrator/internal/app/pkg/logger"
	"github.com/MironAlikc/erpmax-orchestrator/internal/worker"
)

var (
	configPath = flag.String("config", "./config/worker.yaml", "配置文件路径")
)

func main() {
	flag.Parse()

	log.Println("========================================")
	log.Println("  ERPMax Provisioning Worker Starting...")
	log.Println("========================================")

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	log.Printf("Config loaded: %s, env: %s, log_level: %s\n", cfg.App.Name, cfg.App.Env, cfg.App.LogLevel)

	// 2. 初始化 Logger
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	// 3. 创建 Manager
	mgr, err := worker.NewManagerInstance(cfg, zapLogger)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	// 4. 启动 Manager（goroutine）
	go func() {
		if err := mgr.Start(); err != nil {
			log.Fatalf("Manager start failed: %v", err)
		}
	}()

	log.Println("Worker started. Press Ctrl+C to shutdown.")

	// 5. 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Println("========================================")
	log.Printf("  Received signal: %v\n", sig)
	log.Println("  Shutting down Worker...")
	log.Println("========================================")

	// 6. 优雅关闭 Manager
	mgr.Shutdown()

	fmt.Println("========================================")
	fmt.Println("  Worker exited gracefully")
	fmt.Println("========================================")
}
