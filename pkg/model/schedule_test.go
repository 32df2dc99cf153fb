package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestWeekSchedule_SetGet(t *testing.T) {
	ws := NewWeekSchedule()
	empID := uuid.New()

	if _, ok := ws.Get(empID, 0); ok {
		t.Error("Expected empty schedule to have no assignment")
	}

	ws.Set(empID, 0, "D")
	ws.Set(empID, 1, OffCode)

	code, ok := ws.Get(empID, 0)
	if !ok || code != "D" {
		t.Errorf("Expected D, got %q (ok=%v)", code, ok)
	}

	// 显式休息班可读出，但不算工作
	code, ok = ws.Get(empID, 1)
	if !ok || code != OffCode {
		t.Errorf("Expected OFF, got %q (ok=%v)", code, ok)
	}
	if _, worked := ws.WorkedCode(empID, 1); worked {
		t.Error("Expected OFF day not to count as worked")
	}
	if _, worked := ws.WorkedCode(empID, 2); worked {
		t.Error("Expected unassigned day not to count as worked")
	}
	code, worked := ws.WorkedCode(empID, 0)
	if !worked || code != "D" {
		t.Errorf("Expected worked code D, got %q (worked=%v)", code, worked)
	}
}

func TestWeekSchedule_Clone(t *testing.T) {
	empID := uuid.New()
	ws := NewWeekSchedule()
	ws.Set(empID, 0, "D")

	clone := ws.Clone()
	clone.Set(empID, 0, "N")
	clone.Set(empID, 1, "E")

	if code, _ := ws.Get(empID, 0); code != "D" {
		t.Errorf("Expected original to keep D, got %q", code)
	}
	if _, ok := ws.Get(empID, 1); ok {
		t.Error("Expected original to be unaffected by clone mutation")
	}
}

func TestWeekSchedule_CheckInvariants(t *testing.T) {
	emp := &Employee{ID: uuid.New(), Name: "护士A"}

	ws := NewWeekSchedule()
	ws.Set(emp.ID, 0, "D")
	if err := ws.CheckInvariants([]*Employee{emp}); err != nil {
		t.Errorf("Expected valid schedule, got error: %v", err)
	}

	unknown := NewWeekSchedule()
	unknown.Set(uuid.New(), 0, "D")
	if err := unknown.CheckInvariants([]*Employee{emp}); err == nil {
		t.Error("Expected error for unknown employee")
	}

	outOfRange := NewWeekSchedule()
	outOfRange.Set(emp.ID, 7, "D")
	if err := outOfRange.CheckInvariants([]*Employee{emp}); err == nil {
		t.Error("Expected error for day index out of range")
	}
}

func TestOptimizedSchedule_Assignments(t *testing.T) {
	day := &ShiftType{ID: uuid.New(), Code: "D", StartTime: "07:00", EndTime: "15:00", DurationHours: 8}
	catalog := NewShiftCatalog([]*ShiftType{day})

	empA := uuid.New()
	empB := uuid.New()
	ws := NewWeekSchedule()
	ws.Set(empA, 0, "D")
	ws.Set(empA, 1, OffCode)
	ws.Set(empB, 2, "D")

	result := &OptimizedSchedule{Schedule: ws, WeekStart: "2026-01-05"}
	assignments := result.Assignments(catalog)

	// 休息班不产出记录
	if len(assignments) != 2 {
		t.Fatalf("Expected 2 assignments, got %d", len(assignments))
	}

	dates := map[uuid.UUID]string{}
	for _, a := range assignments {
		dates[a.EmployeeID] = a.Date
		if a.ShiftCode != "D" {
			t.Errorf("Expected shift code D, got %q", a.ShiftCode)
		}
		if a.ShiftID != day.ID {
			t.Errorf("Expected shift ID %s, got %s", day.ID, a.ShiftID)
		}
	}
	if dates[empA] != "2026-01-05" {
		t.Errorf("Expected 2026-01-05 for first employee, got %s", dates[empA])
	}
	if dates[empB] != "2026-01-07" {
		t.Errorf("Expected 2026-01-07 for second employee, got %s", dates[empB])
	}
}

func TestOptimizedSchedule_AssignmentsDeterministicOrder(t *testing.T) {
	catalog := NewShiftCatalog([]*ShiftType{
		{ID: uuid.New(), Code: "D", StartTime: "07:00", EndTime: "15:00", DurationHours: 8},
	})

	ws := NewWeekSchedule()
	for i := 0; i < 5; i++ {
		ws.Set(uuid.New(), i, "D")
	}
	result := &OptimizedSchedule{Schedule: ws, WeekStart: "2026-01-05"}

	first := result.Assignments(catalog)
	for run := 0; run < 10; run++ {
		again := result.Assignments(catalog)
		for i := range first {
			if again[i].EmployeeID != first[i].EmployeeID {
				t.Fatal("Expected assignment order to be deterministic")
			}
		}
	}
}

func TestOptimizationConfig_Clone(t *testing.T) {
	cfg := DefaultOptimizationConfig()
	cfg.MinStaffPerShift["D"] = 2

	clone := cfg.Clone()
	clone.MinStaffPerShift["D"] = 5
	clone.MinStaffPerShift["N"] = 1

	if cfg.MinStaffPerShift["D"] != 2 {
		t.Errorf("Expected original min staff 2, got %d", cfg.MinStaffPerShift["D"])
	}
	if _, ok := cfg.MinStaffPerShift["N"]; ok {
		t.Error("Expected original to be unaffected by clone mutation")
	}
}

func TestOptimizationConfig_StaffedCodes(t *testing.T) {
	cfg := DefaultOptimizationConfig()
	cfg.MinStaffPerShift["N"] = 1
	cfg.MinStaffPerShift["D"] = 2
	cfg.MinStaffPerShift["E"] = 2

	codes := cfg.StaffedCodes()
	want := []string{"D", "E", "N"}
	if len(codes) != len(want) {
		t.Fatalf("Expected %d codes, got %d", len(want), len(codes))
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("Expected codes[%d]=%s, got %s", i, code, codes[i])
		}
	}
}
