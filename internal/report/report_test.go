package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boxhaul/internal/haul"
)

func sampleResult(t *testing.T) haul.Result {
	t.Helper()
	reg, err := haul.NewRegistry(3,
		[][]int{{0, 1, 0}, {0, 0, 0}, {0, 0, 2}},
		[][]int{{0, 50, 0}, {0, 0, 0}, {0, 0, 80}},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	res, err := haul.NewSolver(reg, haul.Options{}).Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}

func TestNew_CountsActions(t *testing.T) {
	res := sampleResult(t)
	r := New("run-1", "stdin", res, 1500*time.Microsecond)
	if r.Picks != 2 || r.Moves+r.Picks != r.Actions || r.Delivered != 2 {
		t.Fatalf("report=%+v", r)
	}
	if r.ElapsedMS != 1.5 {
		t.Fatalf("elapsed=%v", r.ElapsedMS)
	}
}

func TestValidate_AcceptsGeneratedReport(t *testing.T) {
	b := MarshalPretty(New("run-1", "", sampleResult(t), 0))
	if err := Validate(b); err != nil {
		t.Fatalf("Validate: %v\n%s", err, b)
	}
}

func TestValidate_AcceptsEmptyRun(t *testing.T) {
	r := New("run-2", "", haul.Result{Status: haul.StatusAllDelivered, GridSize: 4}, 0)
	if err := Validate(MarshalPretty(r)); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_RejectsBrokenReports(t *testing.T) {
	good := New("run-1", "", sampleResult(t), 0)
	var m map[string]any
	if err := json.Unmarshal(MarshalPretty(good), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	mutate := map[string]func(map[string]any){
		"status":     func(m map[string]any) { m["status"] = "DONE" },
		"missing id": func(m map[string]any) { delete(m, "run_id") },
		"empty plan": func(m map[string]any) {
			m["cycles"] = []any{map[string]any{"index": 0, "plan": []any{}, "actions": 0, "pending_before": 1, "pending_after": 0}}
		},
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			cp := map[string]any{}
			for k, v := range m {
				cp[k] = v
			}
			fn(cp)
			b, _ := json.Marshal(cp)
			if err := Validate(b); err == nil {
				t.Fatalf("broken report accepted: %s", b)
			}
		})
	}
}

func TestWrite_CreatesDirectories(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reports", "r.json")
	if err := Write(p, New("run-9", "x", sampleResult(t), 0), true); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), `"run_id": "run-9"`) {
		t.Fatalf("report=%s", b)
	}
}

func TestSummary_Add(t *testing.T) {
	var s Summary
	s.Add(Report{Status: haul.StatusAllDelivered, Boxes: 4, Delivered: 4, Actions: 30, Cycles: make([]haul.Cycle, 2)})
	s.Add(Report{Status: haul.StatusStuck, Boxes: 3, Delivered: 2, Actions: 10, Cycles: make([]haul.Cycle, 2)})
	s.AddFailure()
	if s.Runs != 2 || s.AllDelivered != 1 || s.Stuck != 1 || s.Failed != 1 {
		t.Fatalf("summary=%+v", s)
	}
	if s.AvgActions != 20 || s.AvgCycles != 2 || s.AvgBatch != 1.5 {
		t.Fatalf("averages=%v %v %v", s.AvgActions, s.AvgCycles, s.AvgBatch)
	}
}
