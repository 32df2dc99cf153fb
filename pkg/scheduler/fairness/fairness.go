// Package fairness 计算排班分配的公平性评分
package fairness

import (
	"math"
	"sort"
	"time"

	"github.com/yihuban/yihuban/pkg/model"
)

// Weights 各维度基尼系数在综合评分中的权重
type Weights struct {
	Workload float64 `json:"workload"` // 工时分布
	Night    float64 `json:"night"`    // 夜班分布
	Weekend  float64 `json:"weekend"`  // 周末班分布
}

// DefaultWeights 返回默认权重
func DefaultWeights() Weights {
	return Weights{Workload: 0.5, Night: 0.3, Weekend: 0.2}
}

// Report 公平性分析结果
type Report struct {
	WorkloadGini float64 `json:"workload_gini"` // 0=完全公平, 1=完全不公平
	NightGini    float64 `json:"night_gini"`
	WeekendGini  float64 `json:"weekend_gini"`
	Balance      float64 `json:"balance"` // 1 减去加权基尼和
	Score        int     `json:"score"`   // 0-100
}

// Scorer 公平性评分器
// 在相同输入上评分完全确定，与员工切片顺序无关
type Scorer struct {
	weights Weights
}

// NewScorer 创建公平性评分器
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Evaluate 分析一周排班的公平性
func (s *Scorer) Evaluate(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) *Report {
	if len(employees) == 0 {
		return &Report{Balance: 1, Score: 100}
	}

	catalog := model.NewShiftCatalog(shifts)

	hours := make([]float64, len(employees))
	nights := make([]float64, len(employees))
	weekends := make([]float64, len(employees))

	for i, emp := range employees {
		for day := 0; day < model.DaysPerWeek; day++ {
			code, worked := schedule.WorkedCode(emp.ID, day)
			if !worked {
				continue
			}
			shift, ok := catalog.Get(code)
			if !ok {
				continue
			}
			hours[i] += shift.DurationHours
			if shift.IsNight() {
				nights[i]++
			}
			if isWeekend(weekStart, day) {
				weekends[i]++
			}
		}
	}

	report := &Report{
		WorkloadGini: Gini(hours),
		NightGini:    Gini(nights),
		WeekendGini:  Gini(weekends),
	}
	weighted := s.weights.Workload*report.WorkloadGini +
		s.weights.Night*report.NightGini +
		s.weights.Weekend*report.WeekendGini
	report.Balance = math.Max(0, math.Min(1, 1-weighted))
	report.Score = int(math.Round(100 * report.Balance))
	return report
}

// Score 返回综合公平性评分（0-100）
func (s *Scorer) Score(
	schedule model.WeekSchedule,
	employees []*model.Employee,
	shifts []*model.ShiftType,
	weekStart time.Time,
) int {
	return s.Evaluate(schedule, employees, shifts, weekStart).Score
}

// isWeekend 判断周内日索引是否落在周末
func isWeekend(weekStart time.Time, day int) bool {
	weekday := weekStart.AddDate(0, 0, day).Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// Gini 计算基尼系数
// 全零输入视为完全公平，返回 0
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}
	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}
