package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置（apiserver 与 worker 共用结构，各自加载自己的 yaml）
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lmstfy    LmstfyConfig    `mapstructure:"lmstfy"`
	Provision ProvisionConfig `mapstructure:"provision"`
	Workers   []WorkerConfig  `mapstructure:"workers"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig HTTP 服务配置（仅 apiserver 使用）
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig MySQL 配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig Lmstfy 配置
type LmstfyConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Namespace string `mapstructure:"namespace"`
	Queue     string `mapstructure:"queue"` // 投递队列名称（单一固定队列）
	Token     string `mapstructure:"token"`
}

// ProvisionConfig 执行单元配置
type ProvisionConfig struct {
	BaseDomain string        `mapstructure:"base_domain"` // 站点根域名
	StepDelay  time.Duration `mapstructure:"step_delay"`  // 模拟步骤耗时
}

// WorkerConfig Worker 配置（仅 worker 进程使用）
type WorkerConfig struct {
	Name       string           `mapstructure:"name"`
	QueueName  string           `mapstructure:"queue_name"`
	Subscriber SubscriberConfig `mapstructure:"subscriber"`
	Processor  ProcessorConfig  `mapstructure:"processor"`
}

// SubscriberConfig Subscriber 配置
type SubscriberConfig struct {
	Threads      int           `mapstructure:"threads"`       // 并发拉取数
	Rate         time.Duration `mapstructure:"rate"`          // 拉取速率
	Timeout      time.Duration `mapstructure:"timeout"`       // 拉取超时
	TTR          time.Duration `mapstructure:"ttr"`           // Time-To-Run
	ErrorBackoff time.Duration `mapstructure:"error_backoff"` // 错误退避时间
}

// ProcessorConfig Processor 配置
type ProcessorConfig struct {
	Threads    int           `mapstructure:"threads"`     // 并发处理数
	BufferSize int           `mapstructure:"buffer_size"` // Channel 缓冲大小
	Timeout    time.Duration `mapstructure:"timeout"`     // 单个任务超时
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Provision.BaseDomain == "" {
		cfg.Provision.BaseDomain = "erpmax.cloud"
	}

	return &cfg, nil
}

// Validate 验证配置完整性
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy.host is required")
	}
	if c.Lmstfy.Queue == "" {
		return fmt.Errorf("lmstfy.queue is required")
	}
	return nil
}

// ValidateWorker worker 进程的附加校验
func (c *Config) ValidateWorker() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Workers) == 0 {
		return fmt.Errorf("at least one worker is required")
	}
	return nil
}
