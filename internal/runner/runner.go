// Package runner solves one grid and fans the outcome out to the
// configured sinks: event trace, run index and metrics.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"boxhaul/internal/gridio"
	"boxhaul/internal/haul"
	"boxhaul/internal/logging"
	"boxhaul/internal/metrics"
	"boxhaul/internal/persistence/indexdb"
	"boxhaul/internal/persistence/trace"
	"boxhaul/internal/report"
)

type Runner struct {
	Logger   *slog.Logger
	TraceDir string
	Index    *indexdb.SQLiteIndex
	Metrics  *metrics.Metrics
}

// Outcome is what one solve produced. Err wraps haul.ErrStuck when the
// strategy could not finish; Report and Actions are valid either way.
type Outcome struct {
	Report    report.Report
	Actions   []haul.Action
	TracePath string
	Err       error
}

func (o Outcome) Stuck() bool { return errors.Is(o.Err, haul.ErrStuck) }

func NewRunID() string { return uuid.NewString() }

// Solve runs the planner on g. The returned error covers input and sink
// failures only; a stuck run is reported through Outcome.Err.
func (r *Runner) Solve(ctx context.Context, runID, source string, g *gridio.Grid, emit func(haul.Event)) (Outcome, error) {
	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.With("run", runID)

	reg, err := g.Registry()
	if err != nil {
		return Outcome{}, err
	}

	var tw *trace.Writer
	if r.TraceDir != "" {
		tw, err = trace.Create(r.TraceDir, runID)
		if err != nil {
			return Outcome{}, fmt.Errorf("trace: %w", err)
		}
	}
	sink := func(ev haul.Event) {
		if tw != nil {
			tw.Emit(ev)
		}
		if emit != nil {
			emit(ev)
		}
	}

	start := time.Now()
	res, serr := haul.NewSolver(reg, haul.Options{Logger: log, Emit: sink}).Solve()
	elapsed := time.Since(start)

	out := Outcome{
		Report:  report.New(runID, source, res, elapsed),
		Actions: res.Actions,
		Err:     serr,
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return out, fmt.Errorf("trace %s: %w", tw.Path(), err)
		}
		out.TracePath = tw.Path()
	}
	if r.Index != nil {
		if err := r.Index.RecordReport(ctx, out.Report); err != nil {
			return out, fmt.Errorf("index: %w", err)
		}
	}
	if r.Metrics != nil {
		r.Metrics.Observe(out.Report)
	}

	log.Info("solve finished",
		"source", source,
		"status", res.Status,
		"boxes", res.Boxes,
		"delivered", res.Delivered(),
		"cycles", len(res.Cycles),
		"actions", len(res.Actions),
		"violations", len(res.Violations),
		"elapsed", elapsed,
	)
	return out, nil
}
