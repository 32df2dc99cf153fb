// Package swap 提供换班请求的约束校验
package swap

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/logger"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/constraint"
)

// Proposal 换班提议
// 单向提议交换 RequesterDay 当天两人的班次代码（通常一方为休息）；
// 双向提议额外交换 TargetDay 当天的班次代码
type Proposal struct {
	RequesterID  uuid.UUID `json:"requester_id" validate:"required"`
	TargetID     uuid.UUID `json:"target_id" validate:"required"`
	RequesterDay int       `json:"requester_day" validate:"min=0,max=6"`
	TargetDay    int       `json:"target_day" validate:"min=0,max=6"`
	TwoSided     bool      `json:"two_sided"`
}

// Decision 换班评估结论
// IsValid 为假时由审批工作流决定去留：CanOverride 为真允许人工放行，
// 存在 critical 级硬约束违反时自动拦截
type Decision struct {
	IsValid     bool               `json:"is_valid"`
	CanOverride bool               `json:"can_override"`
	Violations  []model.Violation  `json:"violations"`
	Changed     []model.Assignment `json:"changed"` // 换班后受影响的槽位
	Result      *model.ValidationResult
}

// Validator 换班校验器
// 换班不改变每日各班次人数，评估时不考察人力约束，只看两名当事员工的周排班
type Validator struct {
	constraints *constraint.Validator
	validate    *validator.Validate
	logger      *logger.SchedulerLogger
}

// NewValidator 创建换班校验器
func NewValidator(set *model.ConstraintSet, cfg *model.OptimizationConfig) *Validator {
	if cfg == nil {
		cfg = model.DefaultOptimizationConfig()
	}
	scoped := cfg.Clone()
	scoped.MinStaffPerShift = make(map[string]int)

	return &Validator{
		constraints: constraint.NewValidator(set, scoped),
		validate:    validator.New(),
		logger:      logger.NewSchedulerLogger(),
	}
}

// ValidateProposal 评估换班提议
// 在两名当事员工的完整一周排班上模拟换班并校验员工级约束
func (v *Validator) ValidateProposal(
	schedule model.WeekSchedule,
	proposal *Proposal,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (*Decision, error) {
	if proposal == nil {
		return nil, apperrors.InvalidInput("proposal", "换班提议为空")
	}
	if err := v.validate.Struct(proposal); err != nil {
		return nil, apperrors.InvalidInput("proposal", err.Error()).WithCause(err)
	}
	if proposal.RequesterID == proposal.TargetID {
		return nil, apperrors.InvalidInput("target_id", "不能与自己换班")
	}

	requester := findEmployee(employees, proposal.RequesterID)
	target := findEmployee(employees, proposal.TargetID)
	if requester == nil {
		return nil, apperrors.NotFound("employee", proposal.RequesterID.String())
	}
	if target == nil {
		return nil, apperrors.NotFound("employee", proposal.TargetID.String())
	}

	hypothetical := buildPairSchedule(schedule, requester.ID, target.ID)
	applyExchange(hypothetical, requester.ID, target.ID, proposal.RequesterDay)
	if proposal.TwoSided && proposal.TargetDay != proposal.RequesterDay {
		applyExchange(hypothetical, requester.ID, target.ID, proposal.TargetDay)
	}

	pair := []*model.Employee{requester, target}
	result, err := v.constraints.Validate(hypothetical, pair, shifts, weekStart)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		IsValid:     result.IsValid,
		CanOverride: true,
		Violations:  result.Violations,
		Changed:     v.changedAssignments(hypothetical, proposal, shifts, weekStart),
		Result:      result,
	}
	for _, viol := range result.HardViolations() {
		if viol.Severity == model.SeverityCritical {
			decision.CanOverride = false
		}
	}

	v.logger.SwapEvaluated(requester.Name, target.Name, decision.IsValid, decision.CanOverride)
	return decision, nil
}

// changedAssignments 生成换班后受影响槽位的分配记录
func (v *Validator) changedAssignments(
	hypothetical model.WeekSchedule,
	proposal *Proposal,
	shifts []*model.ShiftType,
	weekStart time.Time,
) []model.Assignment {
	catalog := model.NewShiftCatalog(shifts)
	days := []int{proposal.RequesterDay}
	if proposal.TwoSided && proposal.TargetDay != proposal.RequesterDay {
		days = append(days, proposal.TargetDay)
	}

	changed := make([]model.Assignment, 0, 2*len(days))
	for _, day := range days {
		date := weekStart.AddDate(0, 0, day).Format(model.DateFormat)
		for _, empID := range []uuid.UUID{proposal.RequesterID, proposal.TargetID} {
			code, ok := hypothetical.Get(empID, day)
			if !ok {
				code = model.OffCode
			}
			a := model.Assignment{
				EmployeeID: empID,
				Date:       date,
				ShiftCode:  code,
			}
			if shift, known := catalog.Get(code); known {
				a.ShiftID = shift.ID
			}
			changed = append(changed, a)
		}
	}
	return changed
}

// buildPairSchedule 抽取两名员工的完整一周排班副本
func buildPairSchedule(schedule model.WeekSchedule, first, second uuid.UUID) model.WeekSchedule {
	pair := model.NewWeekSchedule()
	for _, empID := range []uuid.UUID{first, second} {
		for day := 0; day < model.DaysPerWeek; day++ {
			if code, ok := schedule.Get(empID, day); ok {
				pair.Set(empID, day, code)
			}
		}
	}
	return pair
}

// applyExchange 交换两名员工某天的班次代码
func applyExchange(schedule model.WeekSchedule, first, second uuid.UUID, day int) {
	firstCode, firstOK := schedule.Get(first, day)
	secondCode, secondOK := schedule.Get(second, day)

	if secondOK {
		schedule.Set(first, day, secondCode)
	} else {
		delete(schedule[first], day)
	}
	if firstOK {
		schedule.Set(second, day, firstCode)
	} else {
		delete(schedule[second], day)
	}
}

// findEmployee 按 ID 查找员工
func findEmployee(employees []*model.Employee, id uuid.UUID) *model.Employee {
	for _, emp := range employees {
		if emp.ID == id {
			return emp
		}
	}
	return nil
}
