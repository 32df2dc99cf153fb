// Package logger 提供统一的日志框架
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Config 日志配置
type Config struct {
	Level      string `json:"level"`
	Format     string `json:"format"` // json/console
	Output     string `json:"output"` // stdout/stderr
	TimeFormat string `json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// SchedulerLogger 排班引擎专用日志器
type SchedulerLogger struct {
	base *zerolog.Logger
}

// NewSchedulerLogger 创建排班引擎日志器
func NewSchedulerLogger() *SchedulerLogger {
	l := Get().With().Str("component", "scheduler").Logger()
	return &SchedulerLogger{base: &l}
}

// StartSchedule 记录排班开始
func (l *SchedulerLogger) StartSchedule(orgID string, employees, days int) {
	l.base.Info().
		Str("org_id", orgID).
		Int("employees", employees).
		Int("days", days).
		Msg("开始生成排班")
}

// ConstraintViolation 记录约束违反
func (l *SchedulerLogger) ConstraintViolation(rule, details string) {
	l.base.Warn().
		Str("rule", rule).
		Str("details", details).
		Msg("约束违反")
}

// ScheduleComplete 记录排班完成
func (l *SchedulerLogger) ScheduleComplete(orgID string, duration time.Duration, score int, valid bool) {
	l.base.Info().
		Str("org_id", orgID).
		Dur("duration", duration).
		Int("score", score).
		Bool("valid", valid).
		Msg("排班生成完成")
}

// ImprovedSolution 记录局部搜索发现更优解
func (l *SchedulerLogger) ImprovedSolution(iteration int, eval float64) {
	l.base.Debug().
		Int("iteration", iteration).
		Float64("eval", eval).
		Msg("发现更优解")
}

// SwapEvaluated 记录换班评估结果
func (l *SchedulerLogger) SwapEvaluated(requester, target string, valid, canOverride bool) {
	l.base.Info().
		Str("requester", requester).
		Str("target", target).
		Bool("valid", valid).
		Bool("can_override", canOverride).
		Msg("换班评估完成")
}
