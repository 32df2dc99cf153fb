package cache

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/pkg/model"
)

var testWeekStart = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func fixtureEmployees() []*model.Employee {
	return []*model.Employee{
		{ID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Name: "张三"},
		{ID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Name: "李四"},
	}
}

func fixtureShifts() []*model.ShiftType {
	return []*model.ShiftType{
		{ID: uuid.New(), Code: "D", StartTime: "07:00", EndTime: "15:00", DurationHours: 8},
		{ID: uuid.New(), Code: "N", StartTime: "23:00", EndTime: "07:00", DurationHours: 8},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	employees := fixtureEmployees()
	shifts := fixtureShifts()
	set := model.DefaultConstraintSet()
	cfg := model.DefaultOptimizationConfig()

	first := Fingerprint(employees, shifts, set, cfg, testWeekStart)
	second := Fingerprint(employees, shifts, set, cfg, testWeekStart)
	if first != second {
		t.Errorf("Expected identical fingerprints, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("Expected a hex SHA-256, got %q", first)
	}
}

func TestFingerprint_OrderIndependent(t *testing.T) {
	employees := fixtureEmployees()
	reversed := []*model.Employee{employees[1], employees[0]}
	shifts := fixtureShifts()
	set := model.DefaultConstraintSet()
	cfg := model.DefaultOptimizationConfig()

	if Fingerprint(employees, shifts, set, cfg, testWeekStart) !=
		Fingerprint(reversed, shifts, set, cfg, testWeekStart) {
		t.Error("Expected the fingerprint to ignore employee order")
	}
}

func TestFingerprint_SensitiveToInputs(t *testing.T) {
	employees := fixtureEmployees()
	shifts := fixtureShifts()
	set := model.DefaultConstraintSet()
	cfg := model.DefaultOptimizationConfig()

	base := Fingerprint(employees, shifts, set, cfg, testWeekStart)

	if Fingerprint(employees, shifts, set, cfg, testWeekStart.AddDate(0, 0, 7)) == base {
		t.Error("Expected a different week to change the fingerprint")
	}

	altered := cfg.Clone()
	altered.MinStaffPerShift = map[string]int{"D": 2}
	if Fingerprint(employees, shifts, set, altered, testWeekStart) == base {
		t.Error("Expected a staffing change to change the fingerprint")
	}

	fewer := employees[:1]
	if Fingerprint(fewer, shifts, set, cfg, testWeekStart) == base {
		t.Error("Expected a roster change to change the fingerprint")
	}
}
