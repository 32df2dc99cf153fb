package solver

import (
	"context"
	"time"

	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/optimizer"
)

// Adapter 外部求解器适配器
// 实现方负责进程调用、序列化与传输；Solve 返回的 error 表示求解器故障
// （崩溃、超时、输出损坏），业务不可行由调用方在校验阶段判定
type Adapter interface {
	Name() string
	Solve(ctx context.Context, input *Input) (*Output, error)
}

// ApplyOutput 把求解器输出还原为一周排班
// 日期必须落在周范围内，班次按代码或 ID 解析；任何无法解析的记录
// 都视为求解器输出损坏
func ApplyOutput(
	output *Output,
	shifts []*model.ShiftType,
	weekStart time.Time,
) (model.WeekSchedule, optimizer.LockedSet, error) {
	if output == nil {
		return nil, nil, apperrors.SolverFailure("external", nil).WithDetails("输出为空")
	}

	catalog := model.NewShiftCatalog(shifts)
	byID := make(map[string]*model.ShiftType, len(shifts))
	for _, shift := range shifts {
		byID[shift.ID.String()] = shift
	}

	schedule := model.NewWeekSchedule()
	locked := make(optimizer.LockedSet)
	for _, a := range output.Assignments {
		date, err := time.Parse(model.DateFormat, a.Date)
		if err != nil {
			return nil, nil, apperrors.SolverFailure("external", err).WithDetails("分配记录包含非法日期 " + a.Date)
		}
		day := int(date.Sub(weekStart).Hours() / 24)
		if day < 0 || day >= model.DaysPerWeek {
			return nil, nil, apperrors.SolverFailure("external", nil).WithDetails("分配日期 " + a.Date + " 超出排班周")
		}

		code := a.ShiftType
		if code == "" && a.ShiftID != nil {
			if shift, ok := byID[a.ShiftID.String()]; ok {
				code = shift.Code
			}
		}
		if code == "" {
			return nil, nil, apperrors.SolverFailure("external", nil).WithDetails("分配记录缺少班次标识")
		}
		if code != model.OffCode {
			if _, known := catalog.Get(code); !known {
				return nil, nil, apperrors.SolverFailure("external", nil).WithDetails("分配引用了未知班次 " + code)
			}
		}

		schedule.Set(a.EmployeeID, day, code)
		if a.IsLocked {
			locked.Lock(a.EmployeeID, day)
		}
	}
	return schedule, locked, nil
}
