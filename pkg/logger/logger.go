package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"referral-outreach/backend/config"
)

// NewLogger 按 log.level / log.format 构建 Zap 日志器
//
// format=console 供本地开发与 CLI 子命令使用；默认 JSON，便于日志平台按 request_id 检索。
func NewLogger(cfg *config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", cfg.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Encoding = "console"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	} else {
		zapCfg.EncoderConfig.TimeKey = "ts"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		// 导入可能逐行写警告，避免刷屏
		zapCfg.Sampling = &zap.SamplingConfig{Initial: 100, Thereafter: 50}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(zap.String("service", "referral-outreach")),
	)
}
