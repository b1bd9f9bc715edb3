package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boxhaul/internal/haul"
	"boxhaul/internal/report"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, mt := range mf.GetMetric() {
			for _, lp := range mt.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metric
				}
			}
			return mt.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func sample(status haul.Status) report.Report {
	return report.Report{
		RunID:     "r",
		Status:    status,
		GridSize:  4,
		Boxes:     3,
		Delivered: 2,
		Actions:   12,
		Moves:     10,
		Picks:     2,
		Cycles: []haul.Cycle{
			{Index: 0, Plan: []int{0, 1}},
		},
		Violations: []haul.Violation{{BoxID: 1}},
		Stats:      haul.Stats{FeasibilityChecks: 7, Rejections: 2, Fallbacks: 1},
		ElapsedMS:  3,
	}
}

func TestObserve(t *testing.T) {
	m := New()
	m.Observe(sample(haul.StatusAllDelivered))
	m.Observe(sample(haul.StatusStuck))
	m.Observe(sample(haul.StatusStuck))

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"boxhaul_runs_total", map[string]string{"status": "ALL_DELIVERED"}, 1},
		{"boxhaul_runs_total", map[string]string{"status": "STUCK"}, 2},
		{"boxhaul_boxes_total", nil, 9},
		{"boxhaul_boxes_delivered_total", nil, 6},
		{"boxhaul_actions_total", map[string]string{"kind": "move"}, 30},
		{"boxhaul_actions_total", map[string]string{"kind": "pick"}, 6},
		{"boxhaul_feasibility_checks_total", nil, 21},
		{"boxhaul_feasibility_rejections_total", nil, 6},
		{"boxhaul_fallback_trips_total", nil, 3},
		{"boxhaul_contract_violations_total", nil, 3},
	}
	for _, c := range checks {
		if got := counterValue(t, m, c.name, c.labels); got != c.want {
			t.Errorf("%s%v=%v want %v", c.name, c.labels, got, c.want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Observe(sample(haul.StatusAllDelivered))
	path := filepath.Join(t.TempDir(), "prom", "boxhaul.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, want := range []string{
		`boxhaul_runs_total{status="ALL_DELIVERED"} 1`,
		"boxhaul_cycles_per_run_count 1",
		"boxhaul_boxes_per_trip_sum 2",
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("textfile missing %q:\n%s", want, b)
		}
	}
}
