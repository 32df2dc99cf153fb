// Package service 将调度引擎包装为带指标与通知的应用服务
package service

import (
	"context"
	"time"

	"github.com/yihuban/yihuban/internal/metrics"
	"github.com/yihuban/yihuban/internal/notify"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/swap"
)

// SwapService 换班评估服务
// 在纯校验之上补充指标上报与当事人通知
type SwapService struct {
	validator *swap.Validator
	notifier  notify.Dispatcher
	registry  *metrics.Registry
}

// NewSwapService 创建换班评估服务
func NewSwapService(
	set *model.ConstraintSet,
	cfg *model.OptimizationConfig,
	notifier notify.Dispatcher,
	registry *metrics.Registry,
) *SwapService {
	return &SwapService{
		validator: swap.NewValidator(set, cfg),
		notifier:  notifier,
		registry:  registry,
	}
}

// Evaluate 评估换班提议并通知结果
// 通知失败只记日志，评估结论已经产生
func (s *SwapService) Evaluate(
	ctx context.Context,
	schedule model.WeekSchedule,
	proposal *swap.Proposal,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
	recipients []string,
) (*swap.Decision, error) {
	decision, err := s.validator.ValidateProposal(schedule, proposal, employees, shifts, weekStart)
	if err != nil {
		s.registry.Counter("yihuban_swap_evaluations_total").Inc("error")
		return nil, err
	}
	s.registry.Counter("yihuban_swap_evaluations_total").Inc(verdictOf(decision))

	if len(recipients) > 0 {
		requester := employeeName(employees, proposal.RequesterID.String())
		target := employeeName(employees, proposal.TargetID.String())
		if notifyErr := s.notifier.SwapDecided(ctx, recipients, requester, target, decision.IsValid); notifyErr != nil {
			logger.WithError(notifyErr).
				Str("requester", requester).
				Str("target", target).
				Msg("发送换班结果通知失败")
		}
	}
	return decision, nil
}

// verdictOf 归类评估结论：可行 / 可人工放行 / 自动拦截
func verdictOf(decision *swap.Decision) string {
	switch {
	case decision.IsValid:
		return "valid"
	case decision.CanOverride:
		return "overridable"
	default:
		return "blocked"
	}
}

func employeeName(employees []*model.Employee, id string) string {
	for _, emp := range employees {
		if emp.ID.String() == id {
			return emp.Name
		}
	}
	return id
}
