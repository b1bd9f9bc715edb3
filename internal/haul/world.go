package haul

// World is the live state of one run: the registry plus everything the
// agent does to it. Simulators never see a World, only registry snapshots.
type World struct {
	Reg     *Registry
	Agent   Pos
	Hand    []int
	Actions []Action

	Violations []Violation
	// crushed marks boxes already reported in Violations.
	crushed []bool
}

func NewWorld(reg *Registry) *World {
	return &World{Reg: reg, Agent: Origin, crushed: make([]bool, reg.Len())}
}

// Carried returns the ids in the hand, bottom first.
func (w *World) Carried() []int {
	out := make([]int, len(w.Hand))
	copy(out, w.Hand)
	return out
}
