// Package constraint 提供排班约束校验
package constraint

import (
	"sort"
	"time"

	"github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
)

// 各规则的固定惩罚值
const (
	PenaltyConsecutiveDay = 10 // 每超出一天
	PenaltyWeeklyHours    = 15 // 每名员工一次
	PenaltyRestHours      = 8  // 每次间隔不足
	PenaltyStaffShortfall = 12 // 每缺一人
)

// Validator 约束校验器
// 对任意候选排班（允许稀疏/局部）按租户规则集评分；校验本身完全确定
type Validator struct {
	set    *model.ConstraintSet
	cfg    *model.OptimizationConfig
	logger *logger.SchedulerLogger
}

// NewValidator 创建约束校验器
func NewValidator(set *model.ConstraintSet, cfg *model.OptimizationConfig) *Validator {
	if set == nil {
		set = model.DefaultConstraintSet()
	}
	if cfg == nil {
		cfg = model.DefaultOptimizationConfig()
	}
	return &Validator{
		set:    set,
		cfg:    cfg,
		logger: logger.NewSchedulerLogger(),
	}
}

// shiftSpan 预解析的班次时间段
type shiftSpan struct {
	shift   *model.ShiftType
	start   int // 当日分钟数
	end     int // 当日分钟数
	crosses bool
}

// startAbs 返回某天该班次开始时刻的绝对分钟数
func (s *shiftSpan) startAbs(day int) int {
	return day*24*60 + s.start
}

// endAbs 返回某天该班次结束时刻的绝对分钟数
// 跨午夜班次的结束时刻落在次日，夜班接日班的休息计算由此自然成立
func (s *shiftSpan) endAbs(day int) int {
	end := day*24*60 + s.end
	if s.crosses {
		end += 24 * 60
	}
	return end
}

// evalContext 一次校验的预处理输入
type evalContext struct {
	schedule  model.WeekSchedule
	employees []*model.Employee
	spans     map[string]*shiftSpan
	weekStart time.Time
}

// dateOf 返回日索引对应的日期
func (c *evalContext) dateOf(day int) string {
	return c.weekStart.AddDate(0, 0, day).Format(model.DateFormat)
}

// Validate 校验排班方案
// 得分从 100 起累减惩罚并夹取到 [0,100]；IsValid 表示无硬约束违反。
// 返回的 error 仅表示内部缺陷（未知班次代码、不变式破坏），业务不可行不产生 error
func (v *Validator) Validate(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*model.ValidationResult, error) {
	ctx, err := v.prepare(schedule, employees, shifts, weekStart)
	if err != nil {
		return nil, err
	}

	violations := make([]model.Violation, 0)
	violations = append(violations, v.checkMaxConsecutiveDays(ctx)...)
	violations = append(violations, v.checkMaxWeeklyHours(ctx)...)
	violations = append(violations, v.checkMinRestHours(ctx)...)
	violations = append(violations, v.checkMinStaffPerShift(ctx)...)

	result := &model.ValidationResult{
		IsValid:    true,
		Violations: violations,
		Score:      100,
	}
	for _, viol := range violations {
		result.Score -= viol.Penalty
		if viol.Type == model.RuleHard {
			result.IsValid = false
			v.logger.ConstraintViolation(string(viol.Rule), viol.Message)
		}
	}
	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > 100 {
		result.Score = 100
	}
	return result, nil
}

// prepare 预处理输入并校验内部不变式
func (v *Validator) prepare(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*evalContext, error) {
	if err := schedule.CheckInvariants(employees); err != nil {
		return nil, errors.ConstraintEvaluation(err.Error())
	}

	spans := make(map[string]*shiftSpan, len(shifts))
	for _, s := range shifts {
		start, err := s.StartMinute()
		if err != nil {
			return nil, errors.ConstraintEvaluation("班次 " + s.Code + " 开始时间格式错误")
		}
		end, err := s.EndMinute()
		if err != nil {
			return nil, errors.ConstraintEvaluation("班次 " + s.Code + " 结束时间格式错误")
		}
		spans[s.Code] = &shiftSpan{shift: s, start: start, end: end, crosses: end <= start}
	}

	// 违反列表按员工 ID 升序、日索引升序产出，与调用方传入的切片顺序无关
	ordered := make([]*model.Employee, len(employees))
	copy(ordered, employees)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ID.String() < ordered[j].ID.String()
	})

	for _, emp := range ordered {
		for day := 0; day < model.DaysPerWeek; day++ {
			code, ok := schedule.WorkedCode(emp.ID, day)
			if !ok {
				continue
			}
			if _, known := spans[code]; !known {
				return nil, errors.ConstraintEvaluation("分配引用了未知班次代码 " + code)
			}
		}
	}

	return &evalContext{
		schedule:  schedule,
		employees: ordered,
		spans:     spans,
		weekStart: weekStart,
	}, nil
}

// newViolation 按规则构造违反详情
func newViolation(rule *model.ConstraintRule, emp *model.Employee, date, message string, penalty int) model.Violation {
	viol := model.Violation{
		Type:     rule.Type,
		Rule:     rule.Kind,
		Severity: rule.Severity,
		Message:  message,
		Date:     date,
		Penalty:  penalty,
	}
	if emp != nil {
		id := emp.ID
		viol.EmployeeID = &id
	}
	return viol
}
