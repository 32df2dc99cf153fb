package solver

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/optimizer"
)

// 默认运行参数
const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 1
)

// Runner 外部求解器运行器
// 负责重试与故障分类；所有尝试耗尽后回退到进程内优化器，
// 保证调用方总能拿到一个（可能不可行的）排班结果
type Runner struct {
	adapter  Adapter
	set      *model.ConstraintSet
	cfg      *model.OptimizationConfig
	retries  int
	timeout  time.Duration
	fallback bool
	optOpts  []optimizer.Option
	observe  FailureObserver
}

// FailureObserver 求解器故障回调
// 每次失败的求解尝试调用一次，kind 为故障错误码
type FailureObserver func(kind string)

// RunnerOption 运行器可选配置
type RunnerOption func(*Runner)

// WithRetries 设置失败后的重试次数
func WithRetries(n int) RunnerOption {
	return func(r *Runner) { r.retries = n }
}

// WithTimeout 设置单次求解的超时时间
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithoutFallback 禁用进程内回退，尝试耗尽后直接返回求解器错误
func WithoutFallback() RunnerOption {
	return func(r *Runner) { r.fallback = false }
}

// WithOptimizerOptions 透传给进程内优化器的配置（评估与回退共用）
func WithOptimizerOptions(opts ...optimizer.Option) RunnerOption {
	return func(r *Runner) { r.optOpts = opts }
}

// WithFailureObserver 注册求解器故障回调，供调用方接入指标上报
func WithFailureObserver(fn FailureObserver) RunnerOption {
	return func(r *Runner) { r.observe = fn }
}

// NewRunner 创建求解器运行器
func NewRunner(adapter Adapter, set *model.ConstraintSet, cfg *model.OptimizationConfig, opts ...RunnerOption) *Runner {
	r := &Runner{
		adapter:  adapter,
		set:      set,
		cfg:      cfg,
		retries:  DefaultRetries,
		timeout:  DefaultTimeout,
		fallback: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run 委托外部求解器生成一周排班
func (r *Runner) Run(
	ctx context.Context,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*model.OptimizedSchedule, error) {
	input := BuildInput(employees, shifts, r.set, r.cfg, weekStart)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		schedule, err := r.solveOnce(ctx, input, shifts, weekStart)
		if err != nil {
			lastErr = err
			if r.observe != nil {
				r.observe(string(apperrors.GetCode(err)))
			}
			logger.Warn().
				Str("solver", r.adapter.Name()).
				Int("attempt", attempt+1).
				Err(err).
				Msg("求解器尝试失败")
			continue
		}
		return optimizer.NewOptimizer(r.set, r.cfg, r.optOpts...).
			Assess(schedule, employees, shifts, weekStart)
	}

	if lastErr == nil {
		lastErr = apperrors.SolverTimeout(r.adapter.Name()).WithCause(ctx.Err())
	}
	if !r.fallback {
		return nil, lastErr
	}

	logger.Warn().
		Str("solver", r.adapter.Name()).
		Err(lastErr).
		Msg("求解器不可用，回退到进程内优化器")
	return optimizer.NewOptimizer(r.set, r.cfg, r.optOpts...).
		Optimize(ctx, employees, shifts, weekStart)
}

// solveOnce 执行一次求解尝试并分类故障
func (r *Runner) solveOnce(
	ctx context.Context,
	input *Input,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (model.WeekSchedule, error) {
	solveCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	output, err := r.adapter.Solve(solveCtx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.SolverTimeout(r.adapter.Name()).WithCause(err)
		}
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.SolverFailure(r.adapter.Name(), err)
	}

	schedule, _, err := ApplyOutput(output, shifts, weekStart)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}
