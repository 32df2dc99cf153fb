// Package notify 提供排班事件通知
// 通知是尽力而为的旁路：发送失败只记录日志，不影响排班结果
package notify

import (
	"context"
	"fmt"

	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
)

// Dispatcher 通知分发器
type Dispatcher interface {
	// ScheduleGenerated 排班生成完成后通知相关人员
	ScheduleGenerated(ctx context.Context, recipients []string, result *model.OptimizedSchedule) error
	// SwapDecided 换班评估结束后通知当事双方
	SwapDecided(ctx context.Context, recipients []string, requester, target string, approved bool) error
}

// LogDispatcher 仅写日志的分发器，用于测试与未配置 SMTP 的环境
type LogDispatcher struct{}

// NewLogDispatcher 创建日志分发器
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// ScheduleGenerated 记录排班完成事件
func (d *LogDispatcher) ScheduleGenerated(_ context.Context, recipients []string, result *model.OptimizedSchedule) error {
	logger.Info().
		Int("recipients", len(recipients)).
		Str("week_start", result.WeekStart).
		Bool("feasible", result.Validation.IsValid).
		Int("score", result.Validation.Score).
		Msg("排班生成通知")
	return nil
}

// SwapDecided 记录换班结论事件
func (d *LogDispatcher) SwapDecided(_ context.Context, recipients []string, requester, target string, approved bool) error {
	logger.Info().
		Int("recipients", len(recipients)).
		Str("requester", requester).
		Str("target", target).
		Bool("approved", approved).
		Msg("换班结论通知")
	return nil
}

// scheduleSubject 排班通知的邮件主题
func scheduleSubject(result *model.OptimizedSchedule) string {
	if result.Validation.IsValid {
		return fmt.Sprintf("排班已生成（%s 起一周）", result.WeekStart)
	}
	return fmt.Sprintf("排班已生成但存在约束冲突（%s 起一周）", result.WeekStart)
}
