// Package solver 定义外部求解器的输入输出契约与运行封装
package solver

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/model"
)

// Input 求解器输入契约
// 进程内优化器与外部 MILP/CSP 求解器共享同一份输入结构，
// 委托外部求解器时按此形状序列化
type Input struct {
	StartDate             string            `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate               string            `json:"endDate" validate:"required,datetime=2006-01-02"`
	Employees             []InputEmployee   `json:"employees" validate:"required,min=1,dive"`
	Shifts                []InputShift      `json:"shifts" validate:"required,min=1,dive"`
	Constraints           []InputConstraint `json:"constraints,omitempty"`
	RequiredStaffPerShift map[string]int    `json:"requiredStaffPerShift,omitempty"`
	SpecialRequests       []SpecialRequest  `json:"specialRequests,omitempty"`
	Holidays              []string          `json:"holidays,omitempty"`
	TeamPattern           *TeamPattern      `json:"teamPattern,omitempty"`
}

// InputEmployee 求解器视角的员工
type InputEmployee struct {
	ID              uuid.UUID `json:"id" validate:"required"`
	TeamID          string    `json:"teamId,omitempty"`
	CareerGroupCode string    `json:"careerGroupCode,omitempty"`
	WorkPatternType string    `json:"workPatternType,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	ContractType    string    `json:"contractType,omitempty"`
	MaxHoursPerWeek float64   `json:"maxHoursPerWeek,omitempty"`
}

// InputShift 求解器视角的班次
type InputShift struct {
	ID            uuid.UUID `json:"id" validate:"required"`
	Code          string    `json:"code" validate:"required"`
	Name          string    `json:"name,omitempty"`
	StartTime     string    `json:"startTime" validate:"required"`
	EndTime       string    `json:"endTime" validate:"required"`
	DurationHours float64   `json:"durationHours" validate:"gt=0"`
}

// InputConstraint 求解器视角的约束规则
type InputConstraint struct {
	Kind     string `json:"kind" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=hard soft"`
	Severity string `json:"severity,omitempty"`
	Active   bool   `json:"active"`
}

// SpecialRequest 指定某员工某天必须排指定班次
type SpecialRequest struct {
	EmployeeID uuid.UUID `json:"employeeId" validate:"required"`
	Date       string    `json:"date" validate:"required,datetime=2006-01-02"`
	ShiftCode  string    `json:"shiftCode" validate:"required"`
}

// TeamPattern 团队轮转模板
type TeamPattern struct {
	TeamID string   `json:"teamId"`
	Cycle  []string `json:"cycle" validate:"required,min=1"`
}

// Output 求解器输出：扁平分配记录列表
type Output struct {
	Assignments []OutputAssignment `json:"assignments"`
}

// OutputAssignment 求解器产出的单条分配
// ShiftType 为班次代码，缺失时回退用 ShiftID 解析
type OutputAssignment struct {
	EmployeeID uuid.UUID  `json:"employeeId"`
	Date       string     `json:"date"`
	ShiftID    *uuid.UUID `json:"shiftId,omitempty"`
	ShiftType  string     `json:"shiftType,omitempty"`
	IsLocked   bool       `json:"isLocked"`
}

var validate = validator.New()

// BuildInput 从领域模型组装求解器输入
func BuildInput(
	employees []*model.Employee,
	shifts []*model.ShiftType,
	set *model.ConstraintSet,
	cfg *model.OptimizationConfig,
	weekStart time.Time,
) *Input {
	input := &Input{
		StartDate: weekStart.Format(model.DateFormat),
		EndDate:   weekStart.AddDate(0, 0, model.DaysPerWeek-1).Format(model.DateFormat),
		Employees: make([]InputEmployee, 0, len(employees)),
		Shifts:    make([]InputShift, 0, len(shifts)),
	}

	for _, emp := range employees {
		input.Employees = append(input.Employees, InputEmployee{
			ID:              emp.ID,
			TeamID:          emp.DepartmentID.String(),
			CareerGroupCode: emp.Role,
			Skills:          emp.Skills,
			ContractType:    string(emp.ContractType),
			MaxHoursPerWeek: emp.MaxHoursPerWeek,
		})
	}
	for _, shift := range shifts {
		input.Shifts = append(input.Shifts, InputShift{
			ID:            shift.ID,
			Code:          shift.Code,
			Name:          shift.Name,
			StartTime:     shift.StartTime,
			EndTime:       shift.EndTime,
			DurationHours: shift.DurationHours,
		})
	}
	if set != nil {
		for _, rule := range set.Rules {
			input.Constraints = append(input.Constraints, InputConstraint{
				Kind:     string(rule.Kind),
				Type:     string(rule.Type),
				Severity: string(rule.Severity),
				Active:   rule.Active,
			})
		}
	}
	if cfg != nil && len(cfg.MinStaffPerShift) > 0 {
		input.RequiredStaffPerShift = make(map[string]int, len(cfg.MinStaffPerShift))
		for code, min := range cfg.MinStaffPerShift {
			input.RequiredStaffPerShift[code] = min
		}
	}
	return input
}

// Validate 校验输入契约，失败立即拒绝而不是送入求解器
func (i *Input) Validate() error {
	if err := validate.Struct(i); err != nil {
		return apperrors.InvalidInput("solver_input", err.Error()).WithCause(err)
	}
	start, _ := time.Parse(model.DateFormat, i.StartDate)
	end, _ := time.Parse(model.DateFormat, i.EndDate)
	if end.Before(start) {
		return apperrors.InvalidInput("endDate", "结束日期早于开始日期")
	}
	return nil
}

// Marshal 序列化输入
func (i *Input) Marshal() ([]byte, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "求解器输入序列化失败")
	}
	return data, nil
}

// ParseOutput 解析求解器输出
// 格式错误属于求解器故障：结果缺失，而不是排班不可行
func ParseOutput(data []byte) (*Output, error) {
	var output Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, apperrors.SolverFailure("external", err).WithDetails("输出不是合法的 JSON")
	}
	return &output, nil
}
