package constraint

import (
	"fmt"

	"github.com/yihuban/yihuban/pkg/model"
)

// checkMaxConsecutiveDays 最大连续工作天数
// 超出上限后每多一天记一次违反
func (v *Validator) checkMaxConsecutiveDays(ctx *evalContext) []model.Violation {
	rule := v.set.ActiveRule(model.RuleMaxConsecutiveDays)
	if rule == nil {
		return nil
	}

	violations := make([]model.Violation, 0)
	for _, emp := range ctx.employees {
		limit := emp.ConsecutiveDayLimit(v.cfg.MaxConsecutiveDays)
		run := 0
		for day := 0; day < model.DaysPerWeek; day++ {
			if _, worked := ctx.schedule.WorkedCode(emp.ID, day); !worked {
				run = 0
				continue
			}
			run++
			if run > limit {
				violations = append(violations, newViolation(rule, emp, ctx.dateOf(day),
					fmt.Sprintf("员工 %s 连续工作 %d 天，超过上限 %d 天", emp.Name, run, limit),
					PenaltyConsecutiveDay))
			}
		}
	}
	return violations
}

// checkMaxWeeklyHours 周最大工时
// 每名超限员工记一次违反
func (v *Validator) checkMaxWeeklyHours(ctx *evalContext) []model.Violation {
	rule := v.set.ActiveRule(model.RuleMaxWeeklyHours)
	if rule == nil {
		return nil
	}

	violations := make([]model.Violation, 0)
	for _, emp := range ctx.employees {
		limit := emp.WeeklyHourLimit(v.cfg.MaxWeeklyHours)
		total := 0.0
		for day := 0; day < model.DaysPerWeek; day++ {
			code, worked := ctx.schedule.WorkedCode(emp.ID, day)
			if !worked {
				continue
			}
			total += ctx.spans[code].shift.DurationHours
		}
		if total > limit {
			violations = append(violations, newViolation(rule, emp, ctx.dateOf(0),
				fmt.Sprintf("员工 %s 周工时 %.1f 小时，超过上限 %.1f 小时", emp.Name, total, limit),
				PenaltyWeeklyHours))
		}
	}
	return violations
}

// checkMinRestHours 相邻工作日之间的最短休息时长
// 休息时长为前一班结束到后一班开始的间隔，跨午夜班次按次日结束计
func (v *Validator) checkMinRestHours(ctx *evalContext) []model.Violation {
	rule := v.set.ActiveRule(model.RuleMinRestHours)
	if rule == nil {
		return nil
	}

	violations := make([]model.Violation, 0)
	for _, emp := range ctx.employees {
		limit := emp.RestHourLimit(v.cfg.MinRestHours)
		for day := 0; day < model.DaysPerWeek-1; day++ {
			first, worked := ctx.schedule.WorkedCode(emp.ID, day)
			if !worked {
				continue
			}
			second, worked := ctx.schedule.WorkedCode(emp.ID, day+1)
			if !worked {
				continue
			}
			rest := float64(ctx.spans[second].startAbs(day+1)-ctx.spans[first].endAbs(day)) / 60.0
			if rest < float64(limit) {
				violations = append(violations, newViolation(rule, emp, ctx.dateOf(day+1),
					fmt.Sprintf("员工 %s 班次 %s 后仅休息 %.1f 小时，低于下限 %d 小时", emp.Name, first, rest, limit),
					PenaltyRestHours))
			}
		}
	}
	return violations
}

// checkMinStaffPerShift 每日各班次最低在岗人数
// 配置为空时跳过（换班校验等局部场景不考察人数）；每缺一人惩罚累加
func (v *Validator) checkMinStaffPerShift(ctx *evalContext) []model.Violation {
	rule := v.set.ActiveRule(model.RuleMinStaffPerShift)
	if rule == nil || len(v.cfg.MinStaffPerShift) == 0 {
		return nil
	}

	codes := v.cfg.StaffedCodes()
	violations := make([]model.Violation, 0)
	for day := 0; day < model.DaysPerWeek; day++ {
		counts := make(map[string]int, len(codes))
		for _, emp := range ctx.employees {
			code, worked := ctx.schedule.WorkedCode(emp.ID, day)
			if worked {
				counts[code]++
			}
		}
		for _, code := range codes {
			required := v.cfg.MinStaffPerShift[code]
			if counts[code] >= required {
				continue
			}
			shortfall := required - counts[code]
			violations = append(violations, newViolation(rule, nil, ctx.dateOf(day),
				fmt.Sprintf("班次 %s 在岗 %d 人，低于最低要求 %d 人", code, counts[code], required),
				PenaltyStaffShortfall*shortfall))
		}
	}
	return violations
}
