// Package constraints 提供可配置约束规则的目录
// 租户界面从这里读取可启用的规则种类及其参数说明
package constraints

import "github.com/yihuban/yihuban/pkg/model"

// RuleParam 规则参数定义
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, float, map
	Description string `json:"description"`
	Default     string `json:"default,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Kind        model.RuleKind `json:"kind"`
	DisplayName string         `json:"display_name"`
	Type        model.RuleType `json:"type"`
	Severity    model.Severity `json:"severity"`
	Category    string         `json:"category"`
	Description string         `json:"description"`
	Params      []RuleParam    `json:"params"`
}

// Library 返回引擎支持的全部规则定义
func Library() []RuleDefinition {
	return []RuleDefinition{
		{
			Kind:        model.RuleMaxConsecutiveDays,
			DisplayName: "最大连续工作天数",
			Type:        model.RuleHard,
			Severity:    model.SeverityNormal,
			Category:    "工时限制",
			Description: "限制员工连续工作的天数，超出上限后每多一天记一次违反。",
			Params: []RuleParam{
				{Name: "max_days", Type: "int", Description: "最大连续天数", Default: "6", Min: "1", Max: "7"},
			},
		},
		{
			Kind:        model.RuleMaxWeeklyHours,
			DisplayName: "每周最大工时",
			Type:        model.RuleHard,
			Severity:    model.SeverityNormal,
			Category:    "工时限制",
			Description: "限制员工一周的累计工时，时长按班次目录的 duration 计算。",
			Params: []RuleParam{
				{Name: "max_hours", Type: "float", Description: "最大工时(小时)", Default: "48", Min: "8", Max: "72"},
			},
		},
		{
			Kind:        model.RuleMinRestHours,
			DisplayName: "班次间最小休息时间",
			Type:        model.RuleHard,
			Severity:    model.SeverityNormal,
			Category:    "休息保障",
			Description: "相邻两个工作日之间，前一班结束到后一班开始的间隔不得低于下限；跨午夜班次按次日结束计算。",
			Params: []RuleParam{
				{Name: "min_hours", Type: "int", Description: "最小休息时间(小时)", Default: "11", Min: "8", Max: "24"},
			},
		},
		{
			Kind:        model.RuleMinStaffPerShift,
			DisplayName: "班次最低在岗人数",
			Type:        model.RuleHard,
			Severity:    model.SeverityNormal,
			Category:    "人力保障",
			Description: "每日各班次的在岗人数不得低于配置值，每缺一人记一次惩罚。",
			Params: []RuleParam{
				{Name: "min_staff", Type: "map", Description: "班次代码到最低人数的映射"},
			},
		},
		{
			Kind:        model.RuleNightLicensure,
			DisplayName: "夜班执业资质",
			Type:        model.RuleHard,
			Severity:    model.SeverityCritical,
			Category:    "资质合规",
			Description: "夜班必须由持有相应执业资质的员工承担；该违反不允许审批人工放行。",
			Params: []RuleParam{
				{Name: "required_skill", Type: "string", Description: "夜班要求的技能标识", Default: "night_certified"},
			},
		},
		{
			Kind:        model.RuleEmployeePreference,
			DisplayName: "员工偏好",
			Type:        model.RuleSoft,
			Severity:    model.SeverityNormal,
			Category:    "员工体验",
			Description: "尽量满足员工的班次与休息日偏好，按权重计入软约束得分。",
			Params: []RuleParam{
				{Name: "weight", Type: "int", Description: "优化权重", Default: "50", Min: "0", Max: "100"},
			},
		},
	}
}

// Lookup 按种类查找规则定义
func Lookup(kind model.RuleKind) (RuleDefinition, bool) {
	for _, def := range Library() {
		if def.Kind == kind {
			return def, true
		}
	}
	return RuleDefinition{}, false
}
