// Package model 定义排班引擎的核心数据模型
package model

import "github.com/google/uuid"

// RuleKind 约束规则种类标识
type RuleKind string

const (
	RuleMaxConsecutiveDays RuleKind = "max_consecutive_days" // 最大连续工作天数
	RuleMaxWeeklyHours     RuleKind = "max_weekly_hours"     // 每周最大工时
	RuleMinRestHours       RuleKind = "min_rest_hours"       // 班次间最小休息时间
	RuleMinStaffPerShift   RuleKind = "min_staff_per_shift"  // 班次最低人力
	RuleEmployeePreference RuleKind = "employee_preference"  // 员工偏好（软约束，暂未参与校验评分）
	RuleNightLicensure     RuleKind = "night_licensure"      // 夜班执业资质
)

// RuleType 约束规则类型
type RuleType string

const (
	RuleHard RuleType = "hard" // 硬约束（违反即不可行）
	RuleSoft RuleType = "soft" // 软约束（按权重扣分）
)

// Severity 约束严重等级，决定换班审批时能否人工覆盖
type Severity string

const (
	SeverityNormal   Severity = "normal"   // 可人工覆盖
	SeverityCritical Severity = "critical" // 不可覆盖，审批工作流自动拦截
)

// ConstraintRule 声明式约束规则（按租户配置）
type ConstraintRule struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Kind     RuleKind  `json:"kind" db:"kind"`
	Name     string    `json:"name" db:"name"`
	Type     RuleType  `json:"type" db:"type"`
	Category string    `json:"category,omitempty" db:"category"` // 分类标签，如 工时限制/休息保障
	Weight   int       `json:"weight,omitempty" db:"weight"`     // 仅软约束使用
	Active   bool      `json:"active" db:"active"`
	Severity Severity  `json:"severity" db:"severity"`
}

// ConstraintSet 租户的约束规则集合
type ConstraintSet struct {
	Rules []*ConstraintRule `json:"rules"`
}

// Get 按种类查找规则（不区分是否启用）
func (s *ConstraintSet) Get(kind RuleKind) *ConstraintRule {
	for _, r := range s.Rules {
		if r.Kind == kind {
			return r
		}
	}
	return nil
}

// ActiveRule 按种类查找已启用的规则
func (s *ConstraintSet) ActiveRule(kind RuleKind) *ConstraintRule {
	r := s.Get(kind)
	if r == nil || !r.Active {
		return nil
	}
	return r
}

// ActiveHard 返回所有已启用的硬约束规则
func (s *ConstraintSet) ActiveHard() []*ConstraintRule {
	var result []*ConstraintRule
	for _, r := range s.Rules {
		if r.Active && r.Type == RuleHard {
			result = append(result, r)
		}
	}
	return result
}

// DefaultConstraintSet 返回默认约束规则集
// 四条标准硬约束全部启用，严重等级均为可覆盖
func DefaultConstraintSet() *ConstraintSet {
	return &ConstraintSet{
		Rules: []*ConstraintRule{
			{ID: uuid.New(), Kind: RuleMaxConsecutiveDays, Name: "最大连续工作天数", Type: RuleHard, Category: "休息保障", Active: true, Severity: SeverityNormal},
			{ID: uuid.New(), Kind: RuleMaxWeeklyHours, Name: "每周最大工时", Type: RuleHard, Category: "工时限制", Active: true, Severity: SeverityNormal},
			{ID: uuid.New(), Kind: RuleMinRestHours, Name: "班次间最小休息", Type: RuleHard, Category: "休息保障", Active: true, Severity: SeverityNormal},
			{ID: uuid.New(), Kind: RuleMinStaffPerShift, Name: "班次最低人力", Type: RuleHard, Category: "人力覆盖", Active: true, Severity: SeverityNormal},
		},
	}
}
