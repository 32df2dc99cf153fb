package service

import (
	"github.com/yihuban/yihuban/internal/metrics"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/solver"
)

// NewSolverRunner 创建挂接指标上报的求解器运行器
// 每次失败的求解尝试按错误码计入 yihuban_solver_failures_total
func NewSolverRunner(
	adapter solver.Adapter,
	set *model.ConstraintSet,
	cfg *model.OptimizationConfig,
	registry *metrics.Registry,
	opts ...solver.RunnerOption,
) *solver.Runner {
	opts = append(opts, solver.WithFailureObserver(func(kind string) {
		registry.Counter("yihuban_solver_failures_total").Inc(kind)
	}))
	return solver.NewRunner(adapter, set, cfg, opts...)
}
