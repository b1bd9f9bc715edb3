package haul

// FeasibilityChecker decides whether a whole pickup order can be carried
// out and returned to the origin without destroying a box.
type FeasibilityChecker interface {
	Feasible(plan []int) bool
}

// Outcome is the result of one speculative round trip.
type Outcome struct {
	Feasible bool
	// Crushed is the first box destroyed, or -1.
	Crushed int
	// Durability holds the simulated final durability of every box in the
	// plan. It is only complete when Feasible is true.
	Durability map[int]int64
}

// Simulator runs what-if round trips over durability snapshots of a
// registry. It never writes to the registry.
type Simulator struct {
	reg *Registry

	checks     int
	rejections int
}

func NewSimulator(reg *Registry) *Simulator {
	return &Simulator{reg: reg}
}

func (s *Simulator) Feasible(plan []int) bool {
	s.checks++
	if len(plan) == 0 {
		return true
	}
	ok := s.Simulate(plan).Feasible
	if !ok {
		s.rejections++
	}
	return ok
}

// Simulate walks origin -> plan[0] -> ... -> plan[n-1] -> origin, wearing
// the simulated stack before every leg, and stops at the first crushed box.
func (s *Simulator) Simulate(plan []int) Outcome {
	out := Outcome{Feasible: true, Crushed: -1}
	if len(plan) == 0 {
		return out
	}
	dur := s.reg.Snapshot()
	stack := make([]int, 0, len(plan))
	at := Origin

	for _, id := range plan {
		next := s.reg.boxes[id].Pos
		if crushed := wear(stack, s.reg.boxes, dur, at.Dist(next), true); len(crushed) > 0 {
			return Outcome{Crushed: crushed[0]}
		}
		stack = append(stack, id)
		at = next
	}
	if crushed := wear(stack, s.reg.boxes, dur, at.Dist(Origin), true); len(crushed) > 0 {
		return Outcome{Crushed: crushed[0]}
	}

	out.Durability = make(map[int]int64, len(plan))
	for _, id := range plan {
		out.Durability[id] = dur[id]
	}
	return out
}

// Checks reports how many feasibility checks ran and how many were rejected.
func (s *Simulator) Checks() (checks, rejections int) { return s.checks, s.rejections }
