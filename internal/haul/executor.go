package haul

import (
	"io"
	"log/slog"
)

// Violation records a live box destroyed by a committed move. It means the
// simulator and the executor disagreed and is never expected.
type Violation struct {
	Cycle      int   `json:"cycle"`
	BoxID      int   `json:"box_id"`
	Durability int64 `json:"durability"`
	At         Pos   `json:"at"`
}

// Executor performs committed moves and pickups on a World.
type Executor struct {
	w     *World
	emit  func(Event)
	log   *slog.Logger
	cycle int
}

func NewExecutor(w *World, emit func(Event), logger *slog.Logger) *Executor {
	if emit == nil {
		emit = func(Event) {}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Executor{w: w, emit: emit, log: logger}
}

func (e *Executor) SetCycle(c int) { e.cycle = c }

// MoveTo walks the agent to target, vertical units first, then wears every
// carried box for the whole distance. A crushed box is reported once.
func (e *Executor) MoveTo(target Pos) {
	from := e.w.Agent
	dr := target.R - from.R
	dc := target.C - from.C
	dist := abs(dr) + abs(dc)
	if dist == 0 {
		return
	}

	e.repeat(ActDown, ActUp, dr)
	e.repeat(ActRight, ActLeft, dc)

	for _, id := range wear(e.w.Hand, e.w.Reg.boxes, e.w.Reg.dur, dist, false) {
		if e.w.crushed[id] {
			continue
		}
		e.w.crushed[id] = true
		v := Violation{Cycle: e.cycle, BoxID: id, Durability: e.w.Reg.dur[id], At: target}
		e.w.Violations = append(e.w.Violations, v)
		e.log.Error("box crushed during committed move",
			"cycle", e.cycle, "box", id, "durability", v.Durability, "from", from, "to", target)
		e.emit(Event{T: len(e.w.Actions), Type: "Violation", Payload: map[string]any{
			"cycle": e.cycle, "box": id, "durability": v.Durability,
		}})
	}
	e.w.Agent = target

	e.emit(Event{T: len(e.w.Actions), Type: "Move", Payload: map[string]any{
		"from": []int{from.R, from.C}, "to": []int{target.R, target.C},
		"dist": dist, "carried": len(e.w.Hand),
	}})
}

// repeat records |n| copies of pos when n > 0, otherwise of neg.
func (e *Executor) repeat(pos, neg Action, n int) {
	a := pos
	if n < 0 {
		a, n = neg, -n
	}
	for i := 0; i < n; i++ {
		e.w.Actions = append(e.w.Actions, a)
	}
}

// Pick puts box id on top of the hand. The agent must already stand on it.
func (e *Executor) Pick(id int) {
	e.w.Hand = append(e.w.Hand, id)
	e.w.Actions = append(e.w.Actions, ActPick)
	e.emit(Event{T: len(e.w.Actions), Type: "Pick", Payload: map[string]any{
		"box": id, "r": e.w.Agent.R, "c": e.w.Agent.C, "stack": len(e.w.Hand),
	}})
}
