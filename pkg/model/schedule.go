// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DaysPerWeek 排班周期天数
const DaysPerWeek = 7

// OffCode 休息班代码
// 排班表中显式的休息日，区别于未分配（缺失即未分配）
const OffCode = "OFF"

// DateFormat 引擎统一使用的日期格式
const DateFormat = "2006-01-02"

// WeekSchedule 周排班表
// employeeID → 日索引(0-6) → 班次代码；稀疏存储，缺失表示未分配
// 不变式：所有 employeeID 必须引用已知员工，日索引必须落在 [0,6]
type WeekSchedule map[uuid.UUID]map[int]string

// NewWeekSchedule 创建空排班表
func NewWeekSchedule() WeekSchedule {
	return make(WeekSchedule)
}

// Set 设置某员工某天的班次代码
func (ws WeekSchedule) Set(empID uuid.UUID, day int, code string) {
	if ws[empID] == nil {
		ws[empID] = make(map[int]string, DaysPerWeek)
	}
	ws[empID][day] = code
}

// Get 读取某员工某天的班次代码
func (ws WeekSchedule) Get(empID uuid.UUID, day int) (string, bool) {
	code, ok := ws[empID][day]
	return code, ok
}

// WorkedCode 读取某员工某天实际工作的班次代码
// 休息班和未分配均返回 false
func (ws WeekSchedule) WorkedCode(empID uuid.UUID, day int) (string, bool) {
	code, ok := ws[empID][day]
	if !ok || code == OffCode {
		return "", false
	}
	return code, true
}

// Clone 深拷贝排班表
// 局部搜索的写时复制依赖此方法，迭代之间不得共享底层 map
func (ws WeekSchedule) Clone() WeekSchedule {
	clone := make(WeekSchedule, len(ws))
	for empID, days := range ws {
		row := make(map[int]string, len(days))
		for d, code := range days {
			row[d] = code
		}
		clone[empID] = row
	}
	return clone
}

// CheckInvariants 校验排班表不变式
// 返回的错误表示内部缺陷而非业务不可行
func (ws WeekSchedule) CheckInvariants(employees []*Employee) error {
	known := make(map[uuid.UUID]bool, len(employees))
	for _, e := range employees {
		known[e.ID] = true
	}
	for empID, days := range ws {
		if !known[empID] {
			return fmt.Errorf("排班表引用了未知员工 %s", empID)
		}
		for d := range days {
			if d < 0 || d >= DaysPerWeek {
				return fmt.Errorf("员工 %s 的日索引 %d 越界", empID, d)
			}
		}
	}
	return nil
}

// Assignment 排班分配记录（对外持久化/UI 的扁平投影）
type Assignment struct {
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	ShiftID    uuid.UUID `json:"shift_id" db:"shift_id"`
	ShiftCode  string    `json:"shift_code" db:"shift_code"`
	IsLocked   bool      `json:"is_locked" db:"is_locked"` // 锁定的分配不受优化器扰动
}

// Violation 约束违反详情
type Violation struct {
	Type       RuleType   `json:"type"` // hard/soft
	Rule       RuleKind   `json:"rule"`
	Severity   Severity   `json:"severity"`
	Message    string     `json:"message"`
	EmployeeID *uuid.UUID `json:"employee_id,omitempty"`
	Date       string     `json:"date,omitempty"`
	Penalty    int        `json:"penalty"`
}

// ValidationResult 约束校验结果
// 业务不可行不是错误：IsValid=false 的结果正常返回，由调用方决定是否采用
type ValidationResult struct {
	IsValid    bool        `json:"is_valid"` // 无硬约束违反
	Violations []Violation `json:"violations"`
	Score      int         `json:"score"` // 100 减去惩罚后夹取到 [0,100]
}

// HardViolations 返回所有硬约束违反
func (r *ValidationResult) HardViolations() []Violation {
	var result []Violation
	for _, v := range r.Violations {
		if v.Type == RuleHard {
			result = append(result, v)
		}
	}
	return result
}

// OptimizationConfig 优化配置
type OptimizationConfig struct {
	MaxConsecutiveDays int            `json:"max_consecutive_days"`
	MinRestHours       int            `json:"min_rest_hours"`
	MaxWeeklyHours     float64        `json:"max_weekly_hours"`
	MinStaffPerShift   map[string]int `json:"min_staff_per_shift"` // 班次代码 → 最低人数

	// 目标混合系数（不要求相加为 1）
	FairnessWeight   float64 `json:"fairness_weight"`
	PreferenceWeight float64 `json:"preference_weight"`

	MaxIterations int `json:"max_iterations"`
}

// DefaultOptimizationConfig 返回默认优化配置
func DefaultOptimizationConfig() *OptimizationConfig {
	return &OptimizationConfig{
		MaxConsecutiveDays: 6,
		MinRestHours:       11,
		MaxWeeklyHours:     48,
		MinStaffPerShift:   make(map[string]int),
		FairnessWeight:     0.4,
		PreferenceWeight:   0.2,
		MaxIterations:      100,
	}
}

// Clone 深拷贝优化配置
func (c *OptimizationConfig) Clone() *OptimizationConfig {
	clone := *c
	clone.MinStaffPerShift = make(map[string]int, len(c.MinStaffPerShift))
	for code, min := range c.MinStaffPerShift {
		clone.MinStaffPerShift[code] = min
	}
	return &clone
}

// StaffedCodes 返回配置了最低人力的班次代码（升序，保证遍历确定性）
func (c *OptimizationConfig) StaffedCodes() []string {
	codes := make([]string, 0, len(c.MinStaffPerShift))
	for code := range c.MinStaffPerShift {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// ScheduleMetrics 排班指标
type ScheduleMetrics struct {
	CoverageRate        float64 `json:"coverage_rate"`        // 最低人力需求槽位的满足率，超配不计入
	PreferenceRate      float64 `json:"preference_rate"`      // 占位值，真实偏好满足度尚未实现
	DistributionBalance float64 `json:"distribution_balance"` // 分布均衡度（0-1）
	ProcessingTimeMs    int64   `json:"processing_time_ms"`
}

// OptimizedSchedule 优化结果
type OptimizedSchedule struct {
	Schedule      WeekSchedule      `json:"schedule"`
	WeekStart     string            `json:"week_start"` // 日索引 0 对应的日期
	FairnessScore int               `json:"fairness_score"`
	Validation    *ValidationResult `json:"validation"`
	Metrics       ScheduleMetrics   `json:"metrics"`
}

// Assignments 生成扁平分配记录投影，供下游持久化与 UI 消费
// 休息班与未分配不产出记录；员工按 ID 排序，保证输出确定性
func (o *OptimizedSchedule) Assignments(catalog ShiftCatalog) []Assignment {
	start, err := time.Parse(DateFormat, o.WeekStart)
	if err != nil {
		return nil
	}

	empIDs := make([]uuid.UUID, 0, len(o.Schedule))
	for empID := range o.Schedule {
		empIDs = append(empIDs, empID)
	}
	sort.Slice(empIDs, func(i, j int) bool {
		return empIDs[i].String() < empIDs[j].String()
	})

	var result []Assignment
	for _, empID := range empIDs {
		for day := 0; day < DaysPerWeek; day++ {
			code, ok := o.Schedule.WorkedCode(empID, day)
			if !ok {
				continue
			}
			a := Assignment{
				EmployeeID: empID,
				Date:       start.AddDate(0, 0, day).Format(DateFormat),
				ShiftCode:  code,
			}
			if shift, ok := catalog.Get(code); ok {
				a.ShiftID = shift.ID
			}
			result = append(result, a)
		}
	}
	return result
}
