package constraints

import (
	"testing"

	"github.com/yihuban/yihuban/pkg/model"
)

func TestLibrary_CoversAllRuleKinds(t *testing.T) {
	kinds := []model.RuleKind{
		model.RuleMaxConsecutiveDays,
		model.RuleMaxWeeklyHours,
		model.RuleMinRestHours,
		model.RuleMinStaffPerShift,
		model.RuleNightLicensure,
		model.RuleEmployeePreference,
	}

	for _, kind := range kinds {
		def, ok := Lookup(kind)
		if !ok {
			t.Errorf("Expected definition for %s", kind)
			continue
		}
		if def.DisplayName == "" || def.Description == "" {
			t.Errorf("Expected %s to have display name and description", kind)
		}
	}
}

func TestLookup_NightLicensureIsCritical(t *testing.T) {
	def, ok := Lookup(model.RuleNightLicensure)
	if !ok {
		t.Fatal("Expected night licensure definition")
	}
	if def.Type != model.RuleHard {
		t.Errorf("Expected hard rule, got %s", def.Type)
	}
	if def.Severity != model.SeverityCritical {
		t.Errorf("Expected critical severity, got %s", def.Severity)
	}
}

func TestLookup_UnknownKind(t *testing.T) {
	if _, ok := Lookup(model.RuleKind("no_such_rule")); ok {
		t.Error("Expected unknown kind to be absent")
	}
}
