package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/internal/metrics"
	"github.com/yihuban/yihuban/pkg/model"
	"github.com/yihuban/yihuban/pkg/scheduler/solver"
	"github.com/yihuban/yihuban/pkg/scheduler/swap"
)

var testWeekStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) // 周一

func testShifts() []*model.ShiftType {
	return []*model.ShiftType{
		{ID: uuid.New(), Code: "D", Name: "日班", StartTime: "07:00", EndTime: "15:00", DurationHours: 8},
		{ID: uuid.New(), Code: "E", Name: "小夜班", StartTime: "15:00", EndTime: "23:00", DurationHours: 8},
	}
}

// recordingDispatcher 测试用通知桩
type recordingDispatcher struct {
	requester string
	target    string
	approved  bool
	calls     int
}

func (d *recordingDispatcher) ScheduleGenerated(_ context.Context, _ []string, _ *model.OptimizedSchedule) error {
	return nil
}

func (d *recordingDispatcher) SwapDecided(_ context.Context, _ []string, requester, target string, approved bool) error {
	d.requester = requester
	d.target = target
	d.approved = approved
	d.calls++
	return nil
}

func TestSwapService_ValidSwapNotifiesAndCounts(t *testing.T) {
	registry := metrics.NewRegistry()
	dispatcher := &recordingDispatcher{}
	svc := NewSwapService(nil, nil, dispatcher, registry)

	requester := &model.Employee{ID: uuid.New(), Name: "张三"}
	target := &model.Employee{ID: uuid.New(), Name: "李四"}
	employees := []*model.Employee{requester, target}

	schedule := model.NewWeekSchedule()
	schedule.Set(requester.ID, 0, "D")
	schedule.Set(target.ID, 0, model.OffCode)

	proposal := &swap.Proposal{RequesterID: requester.ID, TargetID: target.ID, RequesterDay: 0}
	decision, err := svc.Evaluate(context.Background(), schedule, proposal, employees, testShifts(), testWeekStart, []string{"ward@yihuban.local"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !decision.IsValid {
		t.Errorf("Expected valid swap, got violations: %v", decision.Violations)
	}

	if got := registry.Counter("yihuban_swap_evaluations_total").Value("valid"); got != 1 {
		t.Errorf("Expected 1 valid evaluation counted, got %g", got)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("Expected 1 notification, got %d", dispatcher.calls)
	}
	if dispatcher.requester != "张三" || dispatcher.target != "李四" {
		t.Errorf("Expected names 张三/李四, got %s/%s", dispatcher.requester, dispatcher.target)
	}
	if !dispatcher.approved {
		t.Error("Expected notification to carry approved=true")
	}
}

func TestSwapService_OverridableVerdictCounted(t *testing.T) {
	cfg := model.DefaultOptimizationConfig()
	cfg.MinRestHours = 11
	registry := metrics.NewRegistry()
	svc := NewSwapService(nil, cfg, &recordingDispatcher{}, registry)

	requester := &model.Employee{ID: uuid.New(), Name: "张三"}
	target := &model.Employee{ID: uuid.New(), Name: "李四"}
	employees := []*model.Employee{requester, target}

	// 换班后小夜班次日接日班，休息 8 小时不足
	schedule := model.NewWeekSchedule()
	schedule.Set(requester.ID, 0, model.OffCode)
	schedule.Set(requester.ID, 1, "D")
	schedule.Set(target.ID, 0, "E")

	proposal := &swap.Proposal{RequesterID: requester.ID, TargetID: target.ID, RequesterDay: 0}
	decision, err := svc.Evaluate(context.Background(), schedule, proposal, employees, testShifts(), testWeekStart, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision.IsValid {
		t.Error("Expected swap with insufficient rest to be invalid")
	}
	if !decision.CanOverride {
		t.Error("Expected normal-severity violation to be overridable")
	}

	if got := registry.Counter("yihuban_swap_evaluations_total").Value("overridable"); got != 1 {
		t.Errorf("Expected 1 overridable evaluation counted, got %g", got)
	}
	if got := registry.Counter("yihuban_swap_evaluations_total").Value("valid"); got != 0 {
		t.Errorf("Expected 0 valid evaluations counted, got %g", got)
	}
}

func TestSwapService_InvalidProposalCountsError(t *testing.T) {
	registry := metrics.NewRegistry()
	svc := NewSwapService(nil, nil, &recordingDispatcher{}, registry)

	emp := &model.Employee{ID: uuid.New(), Name: "张三"}
	proposal := &swap.Proposal{RequesterID: emp.ID, TargetID: emp.ID, RequesterDay: 0}

	_, err := svc.Evaluate(context.Background(), model.NewWeekSchedule(), proposal, []*model.Employee{emp}, testShifts(), testWeekStart, nil)
	if err == nil {
		t.Fatal("Expected error for self-swap proposal")
	}
	if got := registry.Counter("yihuban_swap_evaluations_total").Value("error"); got != 1 {
		t.Errorf("Expected 1 error evaluation counted, got %g", got)
	}
}

// failingAdapter 测试用求解器桩，始终失败
type failingAdapter struct{}

func (a *failingAdapter) Name() string { return "milp" }

func (a *failingAdapter) Solve(_ context.Context, _ *solver.Input) (*solver.Output, error) {
	return nil, errors.New("solver crashed")
}

func TestNewSolverRunner_CountsFailures(t *testing.T) {
	registry := metrics.NewRegistry()
	cfg := model.DefaultOptimizationConfig()
	cfg.MaxIterations = 10

	runner := NewSolverRunner(&failingAdapter{}, nil, cfg, registry, solver.WithRetries(2))

	employees := []*model.Employee{
		{ID: uuid.New(), Name: "张三", ContractType: model.ContractFullTime},
		{ID: uuid.New(), Name: "李四", ContractType: model.ContractFullTime},
	}
	result, err := runner.Run(context.Background(), employees, testShifts(), testWeekStart)
	if err != nil {
		t.Fatalf("Expected fallback result, got error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected fallback schedule")
	}

	// 初次尝试加两次重试，每次失败都计数
	if got := registry.Counter("yihuban_solver_failures_total").Value("SOLVER_FAILURE"); got != 3 {
		t.Errorf("Expected 3 solver failures counted, got %g", got)
	}
}
