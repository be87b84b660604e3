package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

// ZapLogger Zap 日志实现
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger 创建 Zap 日志实例
func NewZapLogger(level string) (Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger}, nil
}

// extractFields 从 Context 提取日志字段
func (l *ZapLogger) extractFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0)

	if traceID, ok := ctx.Value("trace_id").(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}

	if workerID, ok := ctx.Value("worker_id").(int); ok {
		fields = append(fields, zap.Int("worker_id", workerID))
	}

	if jobID, ok := ctx.Value("job_id").(string); ok && jobID != "" {
		fields = append(fields, zap.String("job_id", jobID))
	}

	if tenantID, ok := ctx.Value("tenant_id").(string); ok && tenantID != "" {
		fields = append(fields, zap.String("tenant_id", tenantID))
	}

	return fields
}

// Debugf 输出 Debug 日志
func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Infof 输出 Info 日志
func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Warnf 输出 Warn 日志
func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Errorf 输出 Error 日志
func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Sync 同步日志缓冲区
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

// NopLogger 空日志实现（测试用）
type NopLogger struct{}

func (NopLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (NopLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (NopLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (NopLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (NopLogger) Sync() error                                                    { return nil }
