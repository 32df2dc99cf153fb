// Package optimizer 提供排班方案的构造与局部搜索优化
package optimizer

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/constraint"
	"github.com/yihuban/yihuban/pkg/scheduler/fairness"
)

// State 优化器生命周期状态
type State string

const (
	StateInitial     State = "initial"     // 尚未开始
	StateConstructed State = "constructed" // 初始方案已生成
	StateImproving   State = "improving"   // 局部搜索中
	StateFinalized   State = "finalized"   // 结果已产出，实例不可复用
)

// PlaceholderPreferenceRate 偏好满足率占位值
// 真实的偏好评分尚未实现，指标中以固定值标示
const PlaceholderPreferenceRate = 0.7

// invalidSchedulePenalty 存在硬约束违反时约束得分的折减系数
const invalidSchedulePenalty = 0.5

// Optimizer 排班优化器
// 单次使用：每次 Optimize 调用对应一个实例，状态机单向推进
type Optimizer struct {
	validator *constraint.Validator
	scorer    *fairness.Scorer
	cfg       *model.OptimizationConfig
	strategy  Strategy
	rng       *rand.Rand
	locked    LockedSet
	preset    model.WeekSchedule // 锁定槽位的预设分配
	logger    *logger.SchedulerLogger
	state     State
}

// Option 优化器可选配置
type Option func(*Optimizer)

// WithStrategy 指定邻域搜索策略
func WithStrategy(s Strategy) Option {
	return func(o *Optimizer) { o.strategy = s }
}

// WithSeed 指定随机种子，相同种子与输入产生完全相同的结果
func WithSeed(seed int64) Option {
	return func(o *Optimizer) { o.rng = rand.New(rand.NewSource(seed)) }
}

// WithLockedAssignments 预设锁定的分配
// 锁定槽位覆盖初始构造结果，且不受扰动影响
func WithLockedAssignments(assignments []model.Assignment, weekStart time.Time) Option {
	return func(o *Optimizer) {
		for _, a := range assignments {
			date, err := time.Parse(model.DateFormat, a.Date)
			if err != nil {
				continue
			}
			day := int(date.Sub(weekStart).Hours() / 24)
			if day < 0 || day >= model.DaysPerWeek {
				continue
			}
			o.preset.Set(a.EmployeeID, day, a.ShiftCode)
			o.locked.Lock(a.EmployeeID, day)
		}
	}
}

// NewOptimizer 创建排班优化器
func NewOptimizer(set *model.ConstraintSet, cfg *model.OptimizationConfig, opts ...Option) *Optimizer {
	if cfg == nil {
		cfg = model.DefaultOptimizationConfig()
	}
	o := &Optimizer{
		validator: constraint.NewValidator(set, cfg),
		scorer:    fairness.NewScorer(fairness.DefaultWeights()),
		cfg:       cfg,
		strategy:  NewSingleSwapStrategy(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		locked:    make(LockedSet),
		preset:    model.NewWeekSchedule(),
		logger:    logger.NewSchedulerLogger(),
		state:     StateInitial,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State 返回当前生命周期状态
func (o *Optimizer) State() State {
	return o.state
}

// Optimize 生成并优化一周排班
// 上下文取消时停止搜索并返回当前最优方案，不视为错误；
// 返回 error 仅表示输入或内部缺陷
func (o *Optimizer) Optimize(
	ctx context.Context,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*model.OptimizedSchedule, error) {
	if len(employees) == 0 {
		return nil, errors.InvalidInput("employees", "员工列表为空")
	}
	if len(shifts) == 0 {
		return nil, errors.InvalidInput("shifts", "班次目录为空")
	}

	start := time.Now()
	o.logger.StartSchedule(weekStart.Format(model.DateFormat), len(employees), model.DaysPerWeek)

	current := o.Construct(employees, shifts)
	o.state = StateConstructed

	empIDs := make([]uuid.UUID, len(employees))
	for i, emp := range employees {
		empIDs[i] = emp.ID
	}

	currentEval, _, err := o.Evaluate(current, employees, shifts, weekStart)
	if err != nil {
		return nil, err
	}
	best := current.Clone()
	bestEval := currentEval

	o.state = StateImproving
	for i := 0; i < o.cfg.MaxIterations; i++ {
		if ctx.Err() != nil {
			// 取消时停止搜索，保留当前最优，不作为错误返回
			logger.Warn().Int("iteration", i).Msg("优化被取消，返回当前最优方案")
			break
		}

		candidate := current.Clone()
		if !o.strategy.Perturb(o.rng, candidate, empIDs, o.locked) {
			continue
		}

		candidateEval, _, err := o.Evaluate(candidate, employees, shifts, weekStart)
		if err != nil {
			return nil, err
		}
		if o.strategy.Accept(currentEval, candidateEval) {
			current = candidate
			currentEval = candidateEval
			if candidateEval > bestEval {
				best = candidate.Clone()
				bestEval = candidateEval
				o.logger.ImprovedSolution(i, bestEval)
			}
		}
	}

	return o.finalize(best, employees, shifts, weekStart, start)
}

// finalize 产出最终结果
func (o *Optimizer) finalize(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
	started time.Time,
) (*model.OptimizedSchedule, error) {
	validation, err := o.validator.Validate(schedule, employees, shifts, weekStart)
	if err != nil {
		return nil, err
	}
	report := o.scorer.Evaluate(schedule, employees, shifts, weekStart)

	result := &model.OptimizedSchedule{
		Schedule:      schedule,
		WeekStart:     weekStart.Format(model.DateFormat),
		FairnessScore: report.Score,
		Validation:    validation,
		Metrics: model.ScheduleMetrics{
			CoverageRate:        o.coverageRate(schedule, employees),
			PreferenceRate:      PlaceholderPreferenceRate,
			DistributionBalance: report.Balance,
			ProcessingTimeMs:    time.Since(started).Milliseconds(),
		},
	}
	o.state = StateFinalized
	o.logger.ScheduleComplete(result.WeekStart, time.Since(started), validation.Score, validation.IsValid)
	return result, nil
}

// Assess 对既有方案（如外部求解器的产出）做校验并计算指标
func (o *Optimizer) Assess(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*model.OptimizedSchedule, error) {
	return o.finalize(schedule, employees, shifts, weekStart, time.Now())
}

// Construct 生成初始方案
// 班次按开始时间升序排成周期模板（每个班次连排两天，其余休息），
// 员工按下标错位轮转，使每日人力分布均匀
func (o *Optimizer) Construct(employees []*model.Employee, shifts []*model.ShiftType) model.WeekSchedule {
	pattern := o.buildPattern(shifts)
	schedule := model.NewWeekSchedule()

	for i, emp := range employees {
		for day := 0; day < model.DaysPerWeek; day++ {
			if o.locked.IsLocked(emp.ID, day) {
				if code, ok := o.preset.Get(emp.ID, day); ok {
					schedule.Set(emp.ID, day, code)
				}
				continue
			}
			schedule.Set(emp.ID, day, pattern[(day+i)%model.DaysPerWeek])
		}
	}
	return schedule
}

// buildPattern 构造 7 天周期模板
// 每个班次代码占两天，最多排满 5 个工作日，保证每人每周至少两天休息
func (o *Optimizer) buildPattern(shifts []*model.ShiftType) []string {
	ordered := make([]*model.ShiftType, len(shifts))
	copy(ordered, shifts)
	sort.Slice(ordered, func(i, j int) bool {
		si, _ := ordered[i].StartMinute()
		sj, _ := ordered[j].StartMinute()
		if si != sj {
			return si < sj
		}
		return ordered[i].Code < ordered[j].Code
	})

	const maxWorkSlots = model.DaysPerWeek - 2
	pattern := make([]string, 0, model.DaysPerWeek)
	for _, shift := range ordered {
		for n := 0; n < 2 && len(pattern) < maxWorkSlots; n++ {
			pattern = append(pattern, shift.Code)
		}
	}
	for len(pattern) < model.DaysPerWeek {
		pattern = append(pattern, model.OffCode)
	}
	return pattern
}

// Evaluate 计算候选方案的综合评价值
// 约束得分与公平性得分按配置权重混合，存在硬约束违反时约束得分折半
func (o *Optimizer) Evaluate(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (float64, *model.ValidationResult, error) {
	validation, err := o.validator.Validate(schedule, employees, shifts, weekStart)
	if err != nil {
		return 0, nil, err
	}

	constraintScore := float64(validation.Score)
	if !validation.IsValid {
		constraintScore *= invalidSchedulePenalty
	}
	fairScore := float64(o.scorer.Score(schedule, employees, shifts, weekStart))

	eval := (1-o.cfg.FairnessWeight)*constraintScore + o.cfg.FairnessWeight*fairScore
	return eval, validation, nil
}

// coverageRate 计算最低人力需求的满足率
// 只统计配置了最低人力的班次，超配人数不计入；无需求时视为全覆盖
func (o *Optimizer) coverageRate(schedule model.WeekSchedule, employees []*model.Employee) float64 {
	codes := o.cfg.StaffedCodes()
	if len(codes) == 0 {
		return 1.0
	}

	required := 0
	covered := 0
	for day := 0; day < model.DaysPerWeek; day++ {
		counts := make(map[string]int, len(codes))
		for _, emp := range employees {
			if code, worked := schedule.WorkedCode(emp.ID, day); worked {
				counts[code]++
			}
		}
		for _, code := range codes {
			need := o.cfg.MinStaffPerShift[code]
			required += need
			have := counts[code]
			if have > need {
				have = need
			}
			covered += have
		}
	}
	if required == 0 {
		return 1.0
	}
	return float64(covered) / float64(required)
}
