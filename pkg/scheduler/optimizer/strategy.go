package optimizer

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/pkg/model"
)

// Strategy 邻域搜索策略
// Perturb 就地修改候选方案并报告是否产生了有效移动；
// Accept 决定是否用候选解替换当前解
type Strategy interface {
	Name() string
	Perturb(rng *rand.Rand, schedule model.WeekSchedule, employees []uuid.UUID, locked LockedSet) bool
	Accept(current, candidate float64) bool
}

// LockedSet 不可扰动的分配槽位（员工 → 日索引）
type LockedSet map[uuid.UUID]map[int]bool

// IsLocked 检查槽位是否锁定
func (l LockedSet) IsLocked(empID uuid.UUID, day int) bool {
	if l == nil {
		return false
	}
	return l[empID][day]
}

// Lock 标记槽位为锁定
func (l LockedSet) Lock(empID uuid.UUID, day int) {
	days, ok := l[empID]
	if !ok {
		days = make(map[int]bool)
		l[empID] = days
	}
	days[day] = true
}

// maxPerturbAttempts 单次扰动的最大尝试次数，避免在小输入上空转
const maxPerturbAttempts = 8

// SingleSwapStrategy 单交换策略
// 随机选一天，交换两名员工当天的班次代码。交换保持每日各班次人数不变，
// 因此只能改善公平性和员工级约束，不能修复人力缺口
type SingleSwapStrategy struct{}

// NewSingleSwapStrategy 创建单交换策略
func NewSingleSwapStrategy() *SingleSwapStrategy {
	return &SingleSwapStrategy{}
}

// Name 返回策略名
func (s *SingleSwapStrategy) Name() string {
	return "single_swap"
}

// Perturb 执行一次随机交换
func (s *SingleSwapStrategy) Perturb(rng *rand.Rand, schedule model.WeekSchedule, employees []uuid.UUID, locked LockedSet) bool {
	if len(employees) < 2 {
		return false
	}

	for attempt := 0; attempt < maxPerturbAttempts; attempt++ {
		day := rng.Intn(model.DaysPerWeek)
		i := rng.Intn(len(employees))
		j := rng.Intn(len(employees))
		if i == j {
			continue
		}
		first, second := employees[i], employees[j]
		if locked.IsLocked(first, day) || locked.IsLocked(second, day) {
			continue
		}

		firstCode, firstOK := schedule.Get(first, day)
		secondCode, secondOK := schedule.Get(second, day)
		if firstCode == secondCode {
			continue
		}

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
		return true
	}
	return false
}

// Accept 爬山接受准则：仅接受严格更优的候选解
func (s *SingleSwapStrategy) Accept(current, candidate float64) bool {
	return candidate > current
}
