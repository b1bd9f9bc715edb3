package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"boxhaul/internal/haul"
)

//go:embed report.schema.json
var schemaJSON string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("report.schema.json", schemaJSON)
})

type Report struct {
	RunID      string           `json:"run_id"`
	Source     string           `json:"source,omitempty"`
	Status     haul.Status      `json:"status"`
	GridSize   int              `json:"grid_size"`
	Boxes      int              `json:"boxes"`
	Delivered  int              `json:"delivered"`
	Remaining  []int            `json:"remaining,omitempty"`
	Actions    int              `json:"actions"`
	Moves      int              `json:"moves"`
	Picks      int              `json:"picks"`
	Cycles     []haul.Cycle     `json:"cycles"`
	Violations []haul.Violation `json:"violations,omitempty"`
	Stats      haul.Stats       `json:"stats"`
	ElapsedMS  float64          `json:"elapsed_ms"`
}

func New(runID, source string, res haul.Result, elapsed time.Duration) Report {
	moves := res.Moves()
	cycles := res.Cycles
	if cycles == nil {
		cycles = []haul.Cycle{}
	}
	return Report{
		RunID:      runID,
		Source:     source,
		Status:     res.Status,
		GridSize:   res.GridSize,
		Boxes:      res.Boxes,
		Delivered:  res.Delivered(),
		Remaining:  res.Remaining,
		Actions:    len(res.Actions),
		Moves:      moves,
		Picks:      len(res.Actions) - moves,
		Cycles:     cycles,
		Violations: res.Violations,
		Stats:      res.Stats,
		ElapsedMS:  float64(elapsed.Microseconds()) / 1000,
	}
}

func MarshalPretty(v any) []byte {
	b, _ := json.MarshalIndent(v, "", "  ")
	return b
}

// Validate checks an encoded report against the embedded schema.
func Validate(b []byte) error {
	s, err := compileSchema()
	if err != nil {
		return fmt.Errorf("report schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return s.Validate(v)
}

// Write encodes v, optionally validates it, and writes it to path.
func Write(path string, r Report, validate bool) error {
	b := MarshalPretty(r)
	if validate {
		if err := Validate(b); err != nil {
			return fmt.Errorf("report %s: %w", r.RunID, err)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}
