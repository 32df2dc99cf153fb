// Package model 定义排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractType 合同类型
type ContractType string

const (
	ContractFullTime ContractType = "full_time" // 全职
	ContractPartTime ContractType = "part_time" // 兼职
	ContractTemp     ContractType = "temp"      // 临时工
)

// Employee 员工
// 排班运行期间为只读输入，引擎不得修改
type Employee struct {
	ID           uuid.UUID    `json:"id" db:"id" validate:"required"`
	Name         string       `json:"name" db:"name" validate:"required"`
	Role         string       `json:"role" db:"role"`
	DepartmentID uuid.UUID    `json:"department_id" db:"department_id"`
	ContractType ContractType `json:"contract_type" db:"contract_type"`

	// 合同工时约束（0 表示使用租户级配置）
	MaxHoursPerWeek float64 `json:"max_hours_per_week" db:"max_hours_per_week"`
	MinHoursPerWeek float64 `json:"min_hours_per_week" db:"min_hours_per_week"`

	Skills []string `json:"skills,omitempty" db:"skills"`

	// 工作偏好与可用性
	Preferences  *EmployeePreferences  `json:"preferences,omitempty" db:"preferences"`
	Availability *EmployeeAvailability `json:"availability,omitempty" db:"availability"`
}

// EmployeePreferences 员工偏好
type EmployeePreferences struct {
	PreferredShifts    []string       `json:"preferred_shifts,omitempty"`     // 偏好班次代码
	AvoidShifts        []string       `json:"avoid_shifts,omitempty"`         // 避免班次代码
	PreferredDaysOff   []time.Weekday `json:"preferred_days_off,omitempty"`   // 偏好休息日
	MaxConsecutiveDays int            `json:"max_consecutive_days,omitempty"` // 期望最大连续工作天数（0 表示使用租户级配置）
	MinRestHours       int            `json:"min_rest_hours,omitempty"`       // 期望最小休息时间（0 表示使用租户级配置）
}

// EmployeeAvailability 员工可用性
type EmployeeAvailability struct {
	AvailableDays    [7]bool          `json:"available_days"`              // 周内各天是否可排班（0=周一）
	UnavailableDates []string         `json:"unavailable_dates,omitempty"` // YYYY-MM-DD
	TimeOffRequests  []TimeOffRequest `json:"time_off_requests,omitempty"`
}

// TimeOffRequest 休假申请
type TimeOffRequest struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
	Reason    string `json:"reason,omitempty"`
}

// HasSkill 检查员工是否具备某技能
func (e *Employee) HasSkill(skill string) bool {
	for _, s := range e.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// WeeklyHourLimit 返回员工的周工时上限
// 员工合同上限优先，未设置时回退到租户级默认值
func (e *Employee) WeeklyHourLimit(tenantDefault float64) float64 {
	if e.MaxHoursPerWeek > 0 {
		return e.MaxHoursPerWeek
	}
	return tenantDefault
}

// ConsecutiveDayLimit 返回员工的最大连续工作天数
func (e *Employee) ConsecutiveDayLimit(tenantDefault int) int {
	if e.Preferences != nil && e.Preferences.MaxConsecutiveDays > 0 {
		return e.Preferences.MaxConsecutiveDays
	}
	return tenantDefault
}

// RestHourLimit 返回员工的最小班次间休息时间
func (e *Employee) RestHourLimit(tenantDefault int) int {
	if e.Preferences != nil && e.Preferences.MinRestHours > 0 {
		return e.Preferences.MinRestHours
	}
	return tenantDefault
}

// IsUnavailableOn 检查员工在某日期是否不可用
func (a *EmployeeAvailability) IsUnavailableOn(date string) bool {
	if a == nil {
		return false
	}
	for _, d := range a.UnavailableDates {
		if d == date {
			return true
		}
	}
	for _, req := range a.TimeOffRequests {
		if date >= req.StartDate && date <= req.EndDate {
			return true
		}
	}
	return false
}
