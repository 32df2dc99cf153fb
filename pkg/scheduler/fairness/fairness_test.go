package fairness

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/pkg/model"
)

var testWeekStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // 周一

func testShifts() []*model.ShiftType {
	return []*model.ShiftType{
		{ID: uuid.New(), Code: "D", Name: "日班", StartTime: "07:00", EndTime: "15:00", DurationHours: 8},
		{ID: uuid.New(), Code: "N", Name: "大夜班", StartTime: "23:00", EndTime: "07:00", DurationHours: 8},
	}
}

func TestGini_EqualDistribution(t *testing.T) {
	gini := Gini([]float64{40, 40, 40, 40})
	if gini != 0 {
		t.Errorf("Expected gini 0 for equal distribution, got %f", gini)
	}
}

func TestGini_OneAbsorbsAll(t *testing.T) {
	gini := Gini([]float64{0, 0, 0, 40})
	expected := 0.75 // (n-1)/n
	if math.Abs(gini-expected) > 1e-9 {
		t.Errorf("Expected gini %f, got %f", expected, gini)
	}
}

func TestGini_AllZero(t *testing.T) {
	if gini := Gini([]float64{0, 0, 0}); gini != 0 {
		t.Errorf("Expected gini 0 for all-zero input, got %f", gini)
	}
	if gini := Gini(nil); gini != 0 {
		t.Errorf("Expected gini 0 for empty input, got %f", gini)
	}
}

func TestScorer_PerfectlyBalanced(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	a := &model.Employee{ID: uuid.New(), Name: "张三"}
	b := &model.Employee{ID: uuid.New(), Name: "李四"}

	schedule := model.NewWeekSchedule()
	schedule.Set(a.ID, 0, "D")
	schedule.Set(b.ID, 0, "D")

	score := scorer.Score(schedule, []*model.Employee{a, b}, testShifts(), testWeekStart)
	if score != 100 {
		t.Errorf("Expected score 100, got %d", score)
	}
}

func TestScorer_NightShiftSkew(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	a := &model.Employee{ID: uuid.New(), Name: "张三"}
	b := &model.Employee{ID: uuid.New(), Name: "李四"}

	// 工时相同，但夜班全部压给一个人
	schedule := model.NewWeekSchedule()
	for day := 0; day < 3; day++ {
		schedule.Set(a.ID, day, "N")
		schedule.Set(b.ID, day, "D")
	}

	report := scorer.Evaluate(schedule, []*model.Employee{a, b}, testShifts(), testWeekStart)
	if report.WorkloadGini != 0 {
		t.Errorf("Expected workload gini 0, got %f", report.WorkloadGini)
	}
	if math.Abs(report.NightGini-0.5) > 1e-9 {
		t.Errorf("Expected night gini 0.5, got %f", report.NightGini)
	}
	// 100 - 100*0.3*0.5
	if report.Score != 85 {
		t.Errorf("Expected score 85, got %d", report.Score)
	}
}

func TestScorer_WeekendConcentration(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	a := &model.Employee{ID: uuid.New(), Name: "张三"}
	b := &model.Employee{ID: uuid.New(), Name: "李四"}

	// 周起始为周一，日索引 5、6 是周末
	schedule := model.NewWeekSchedule()
	schedule.Set(a.ID, 5, "D")
	schedule.Set(a.ID, 6, "D")
	schedule.Set(b.ID, 0, "D")
	schedule.Set(b.ID, 1, "D")

	report := scorer.Evaluate(schedule, []*model.Employee{a, b}, testShifts(), testWeekStart)
	if report.WorkloadGini != 0 {
		t.Errorf("Expected workload gini 0, got %f", report.WorkloadGini)
	}
	if math.Abs(report.WeekendGini-0.5) > 1e-9 {
		t.Errorf("Expected weekend gini 0.5, got %f", report.WeekendGini)
	}
	// 100 - 100*0.2*0.5
	if report.Score != 90 {
		t.Errorf("Expected score 90, got %d", report.Score)
	}
}

func TestScorer_NoEmployees(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	score := scorer.Score(model.NewWeekSchedule(), nil, testShifts(), testWeekStart)
	if score != 100 {
		t.Errorf("Expected score 100 for no employees, got %d", score)
	}
}

func TestScorer_OrderIndependent(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	a := &model.Employee{ID: uuid.New(), Name: "张三"}
	b := &model.Employee{ID: uuid.New(), Name: "李四"}
	c := &model.Employee{ID: uuid.New(), Name: "王五"}

	schedule := model.NewWeekSchedule()
	schedule.Set(a.ID, 0, "N")
	schedule.Set(b.ID, 5, "D")
	schedule.Set(c.ID, 2, "D")
	schedule.Set(c.ID, 3, "D")

	forward := scorer.Score(schedule, []*model.Employee{a, b, c}, testShifts(), testWeekStart)
	reversed := scorer.Score(schedule, []*model.Employee{c, b, a}, testShifts(), testWeekStart)
	if forward != reversed {
		t.Errorf("Expected identical scores regardless of employee order, got %d and %d", forward, reversed)
	}
}
