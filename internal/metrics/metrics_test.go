package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestCounter_IncAndValue(t *testing.T) {
	r := NewRegistry()
	c := r.Counter("yihuban_schedule_runs_total")
	if c == nil {
		t.Fatal("Expected registered counter")
	}

	c.Inc("completed")
	c.Inc("completed")
	c.Inc("failed")
	c.Add(3, "completed")

	if got := c.Value("completed"); got != 5 {
		t.Errorf("Expected 5, got %g", got)
	}
	if got := c.Value("failed"); got != 1 {
		t.Errorf("Expected 1, got %g", got)
	}
	if got := c.Value("requeued"); got != 0 {
		t.Errorf("Expected 0 for unseen label, got %g", got)
	}
}

func TestGauge_Set(t *testing.T) {
	r := NewRegistry()
	g := r.Gauge("yihuban_solution_score")

	g.Set(85, "org-1")
	g.Set(92, "org-1")
	g.Set(70, "org-2")

	if got := g.Value("org-1"); got != 92 {
		t.Errorf("Expected 92, got %g", got)
	}
	if got := g.Value("org-2"); got != 70 {
		t.Errorf("Expected 70, got %g", got)
	}
}

func TestRegistry_ObserveDuration(t *testing.T) {
	r := NewRegistry()
	r.ObserveDuration("yihuban_schedule_duration_seconds", 300*time.Millisecond)
	r.ObserveDuration("yihuban_schedule_duration_seconds", 2*time.Second)

	out := r.Export()
	if !strings.Contains(out, "yihuban_schedule_duration_seconds_count 2") {
		t.Errorf("Expected histogram count 2 in export, got:\n%s", out)
	}
}

func TestRegistry_Export(t *testing.T) {
	r := NewRegistry()
	r.Counter("yihuban_constraint_violations_total").Inc("min_rest_hours")
	r.Gauge("yihuban_coverage_rate").Set(0.93, "org-1")

	out := r.Export()
	for _, want := range []string{
		"# TYPE yihuban_constraint_violations_total counter",
		`yihuban_constraint_violations_total{rule="min_rest_hours"} 1`,
		"# TYPE yihuban_coverage_rate gauge",
		`yihuban_coverage_rate{org_id="org-1"} 0.93`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected export to contain %q, got:\n%s", want, out)
		}
	}
}
