package haul

import (
	"fmt"
	"io"
	"log/slog"
)

type Cycle struct {
	Index         int   `json:"index"`
	Plan          []int `json:"plan"`
	Fallback      bool  `json:"fallback,omitempty"`
	Actions       int   `json:"actions"`
	PendingBefore int   `json:"pending_before"`
	PendingAfter  int   `json:"pending_after"`
}

type Stats struct {
	FeasibilityChecks int `json:"feasibility_checks"`
	Rejections        int `json:"rejections"`
	Fallbacks         int `json:"fallbacks"`
}

type Result struct {
	Status     Status      `json:"status"`
	GridSize   int         `json:"grid_size"`
	Boxes      int         `json:"boxes"`
	Actions    []Action    `json:"-"`
	Cycles     []Cycle     `json:"cycles"`
	Remaining  []int       `json:"remaining,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
	Stats      Stats       `json:"stats"`
	Events     []Event     `json:"events,omitempty"`
}

func (r Result) Delivered() int { return r.Boxes - len(r.Remaining) }

func (r Result) Moves() int {
	n := 0
	for _, a := range r.Actions {
		if a.IsMove() {
			n++
		}
	}
	return n
}

type Options struct {
	Logger *slog.Logger
	// Emit receives every event as it happens.
	Emit func(Event)
	// Record keeps all events in Result.Events.
	Record bool
	// Checker replaces the registry simulator; used by tests.
	Checker FeasibilityChecker
}

// Solver drives transport cycles until every box is home or none can move.
type Solver struct {
	world   *World
	sim     *Simulator
	planner *Planner
	exec    *Executor
	log     *slog.Logger
	emit    func(Event)
	events  []Event

	pending []bool
	left    int
	phase   Phase
}

func NewSolver(reg *Registry, opts Options) *Solver {
	s := &Solver{
		world:   NewWorld(reg),
		sim:     NewSimulator(reg),
		log:     opts.Logger,
		pending: make([]bool, reg.Len()),
		left:    reg.Len(),
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.emit = func(ev Event) {
		if opts.Record {
			s.events = append(s.events, ev)
		}
		if opts.Emit != nil {
			opts.Emit(ev)
		}
	}
	var check FeasibilityChecker = s.sim
	if opts.Checker != nil {
		check = opts.Checker
	}
	s.planner = NewPlanner(reg, check)
	s.exec = NewExecutor(s.world, s.emit, s.log)
	for i := range s.pending {
		s.pending[i] = true
	}
	return s
}

func (s *Solver) World() *World { return s.world }
func (s *Solver) Phase() Phase { return s.phase }

func (s *Solver) pendingIDs() []int {
	ids := make([]int, 0, s.left)
	for id, ok := range s.pending {
		if ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Solve runs cycles to completion. When the strategy gets stuck the result
// still carries every committed action and the error wraps ErrStuck.
func (s *Solver) Solve() (Result, error) {
	reg := s.world.Reg
	res := Result{GridSize: reg.Size(), Boxes: reg.Len()}
	var err error

	for cycle := 0; s.left > 0; cycle++ {
		// ---- AT_ORIGIN_EMPTY ----
		s.exec.SetCycle(cycle)
		s.exec.MoveTo(Origin)
		s.world.Hand = s.world.Hand[:0]
		s.phase = PhaseAtOriginEmpty
		start := len(s.world.Actions)
		s.emit(Event{T: start, Type: "CycleStart", Payload: map[string]any{
			"cycle": cycle, "pending": s.left,
		}})

		// ---- PLANNING ----
		s.phase = PhasePlanning
		plan, fallback, perr := s.planner.Plan(s.world.Agent, s.pendingIDs())
		if perr != nil {
			err = fmt.Errorf("cycle %d: %w (%d boxes left)", cycle, perr, s.left)
			s.log.Warn("strategy stuck", "cycle", cycle, "remaining", s.left)
			s.emit(Event{T: start, Type: "Stuck", Payload: map[string]any{
				"cycle": cycle, "remaining": s.left,
			}})
			s.phase = PhaseAtOriginEmpty
			break
		}
		if fallback {
			s.log.Debug("single-box fallback", "cycle", cycle, "box", plan[0])
		}
		s.emit(Event{T: start, Type: "Plan", Payload: map[string]any{
			"cycle": cycle, "plan": plan, "fallback": fallback,
		}})

		// ---- EXECUTING ----
		s.phase = PhaseExecuting
		for _, id := range plan {
			b := reg.boxes[id]
			s.exec.MoveTo(b.Pos)
			s.exec.Pick(id)
			reg.Clear(b.Pos)
		}

		// ---- RETURNING ----
		s.phase = PhaseReturning
		s.exec.MoveTo(Origin)
		before := s.left
		for _, id := range plan {
			s.pending[id] = false
		}
		s.left -= len(plan)
		s.phase = PhaseAtOriginEmpty

		c := Cycle{
			Index:         cycle,
			Plan:          plan,
			Fallback:      fallback,
			Actions:       len(s.world.Actions) - start,
			PendingBefore: before,
			PendingAfter:  s.left,
		}
		res.Cycles = append(res.Cycles, c)
		s.log.Debug("cycle done", "cycle", cycle, "boxes", len(plan), "actions", c.Actions, "pending", s.left)
		s.emit(Event{T: len(s.world.Actions), Type: "CycleEnd", Payload: map[string]any{
			"cycle": cycle, "delivered": len(plan), "pending": s.left,
		}})
	}

	res.Status = StatusAllDelivered
	if err != nil {
		res.Status = StatusStuck
		res.Remaining = s.pendingIDs()
	}
	res.Actions = s.world.Actions
	res.Violations = s.world.Violations
	res.Stats.FeasibilityChecks, res.Stats.Rejections = s.planner.Checks()
	res.Stats.Fallbacks = s.planner.Fallbacks()

	s.emit(Event{T: len(s.world.Actions), Type: "Done", Payload: map[string]any{
		"status": string(res.Status), "actions": len(res.Actions), "cycles": len(res.Cycles),
	}})
	res.Events = s.events
	return res, err
}
