package optimizer

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/yihuban/yihuban/pkg/model"
)

func TestSingleSwap_RequiresTwoEmployees(t *testing.T) {
	s := NewSingleSwapStrategy()
	rng := rand.New(rand.NewSource(1))
	empID := uuid.New()

	schedule := model.NewWeekSchedule()
	schedule.Set(empID, 0, "D")

	if s.Perturb(rng, schedule, []uuid.UUID{empID}, nil) {
		t.Error("Expected no move with a single employee")
	}
}

func TestSingleSwap_PreservesDailyShiftCounts(t *testing.T) {
	s := NewSingleSwapStrategy()
	rng := rand.New(rand.NewSource(2))

	a, b, c := uuid.New(), uuid.New(), uuid.New()
	ids := []uuid.UUID{a, b, c}
	schedule := model.NewWeekSchedule()
	for day := 0; day < model.DaysPerWeek; day++ {
		schedule.Set(a, day, "D")
		schedule.Set(b, day, "E")
		schedule.Set(c, day, model.OffCode)
	}

	dayCodes := func(day int) []string {
		codes := make([]string, 0, len(ids))
		for _, id := range ids {
			if code, ok := schedule.Get(id, day); ok {
				codes = append(codes, code)
			}
		}
		sort.Strings(codes)
		return codes
	}

	before := make(map[int][]string)
	for day := 0; day < model.DaysPerWeek; day++ {
		before[day] = dayCodes(day)
	}

	for i := 0; i < 20; i++ {
		s.Perturb(rng, schedule, ids, nil)
	}

	for day := 0; day < model.DaysPerWeek; day++ {
		after := dayCodes(day)
		for i, code := range before[day] {
			if after[i] != code {
				t.Fatalf("Day %d: shift multiset changed from %v to %v", day, before[day], after)
			}
		}
	}
}

func TestSingleSwap_RespectsLockedSlots(t *testing.T) {
	s := NewSingleSwapStrategy()
	rng := rand.New(rand.NewSource(3))

	a, b := uuid.New(), uuid.New()
	schedule := model.NewWeekSchedule()
	for day := 0; day < model.DaysPerWeek; day++ {
		schedule.Set(a, day, "D")
		schedule.Set(b, day, "E")
	}

	locked := make(LockedSet)
	for day := 0; day < model.DaysPerWeek; day++ {
		locked.Lock(a, day)
	}

	for i := 0; i < 50; i++ {
		s.Perturb(rng, schedule, []uuid.UUID{a, b}, locked)
	}

	for day := 0; day < model.DaysPerWeek; day++ {
		if code, _ := schedule.Get(a, day); code != "D" {
			t.Fatalf("Day %d: locked assignment changed to %q", day, code)
		}
	}
}

func TestSingleSwap_AcceptOnlyStrictImprovement(t *testing.T) {
	s := NewSingleSwapStrategy()
	if s.Accept(50, 50) {
		t.Error("Expected equal evaluation to be rejected")
	}
	if s.Accept(50, 49) {
		t.Error("Expected worse evaluation to be rejected")
	}
	if !s.Accept(50, 51) {
		t.Error("Expected better evaluation to be accepted")
	}
}
