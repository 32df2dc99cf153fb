// Package cache 提供排班结果缓存与并发运行互斥
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/yihuban/yihuban/pkg/model"
)

// fingerprintPayload 指纹的规范化输入
// 所有切片先排序再序列化，保证与调用方传参顺序无关
type fingerprintPayload struct {
	WeekStart   string              `json:"week_start"`
	Employees   []fingerprintEmp    `json:"employees"`
	Shifts      []fingerprintShift  `json:"shifts"`
	Rules       []fingerprintRule   `json:"rules"`
	MinStaff    map[string]int      `json:"min_staff"`
	Limits      [3]float64          `json:"limits"` // 连续天数/休息小时/周工时
}

type fingerprintEmp struct {
	ID       string  `json:"id"`
	MaxHours float64 `json:"max_hours"`
}

type fingerprintShift struct {
	Code  string  `json:"code"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

type fingerprintRule struct {
	Kind     string `json:"kind"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Active   bool   `json:"active"`
}

// Fingerprint 计算一次排班请求的确定性指纹
// 相同的员工、班次、规则集与周范围产生相同指纹，作为缓存键与运行互斥键
func Fingerprint(
	employees []*model.Employee,
	shifts []*model.ShiftType,
	set *model.ConstraintSet,
	cfg *model.OptimizationConfig,
	weekStart time.Time,
) string {
	payload := fingerprintPayload{
		WeekStart: weekStart.Format(model.DateFormat),
		MinStaff:  map[string]int{},
	}

	for _, emp := range employees {
		payload.Employees = append(payload.Employees, fingerprintEmp{
			ID:       emp.ID.String(),
			MaxHours: emp.MaxHoursPerWeek,
		})
	}
	sort.Slice(payload.Employees, func(i, j int) bool {
		return payload.Employees[i].ID < payload.Employees[j].ID
	})

	for _, shift := range shifts {
		payload.Shifts = append(payload.Shifts, fingerprintShift{
			Code:  shift.Code,
			Start: shift.StartTime,
			End:   shift.EndTime,
			Hours: shift.DurationHours,
		})
	}
	sort.Slice(payload.Shifts, func(i, j int) bool {
		return payload.Shifts[i].Code < payload.Shifts[j].Code
	})

	if set != nil {
		for _, rule := range set.Rules {
			payload.Rules = append(payload.Rules, fingerprintRule{
				Kind:     string(rule.Kind),
				Type:     string(rule.Type),
				Severity: string(rule.Severity),
				Active:   rule.Active,
			})
		}
		sort.Slice(payload.Rules, func(i, j int) bool {
			return payload.Rules[i].Kind < payload.Rules[j].Kind
		})
	}

	if cfg != nil {
		for code, min := range cfg.MinStaffPerShift {
			payload.MinStaff[code] = min
		}
		payload.Limits = [3]float64{
			float64(cfg.MaxConsecutiveDays),
			float64(cfg.MinRestHours),
			cfg.MaxWeeklyHours,
		}
	}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
