package haul

import "errors"

// ErrStuck means no pending box passes the checker even as a lone trip.
// NewRegistry only admits boxes with positive durability and a lone box
// bears no weight, so the registry simulator never produces it; it needs a
// stricter FeasibilityChecker.
var ErrStuck = errors.New("haul: no box can be transported safely")

type candidate struct {
	id     int
	dist   int
	weight int
}

// better reports whether a scores strictly lower than b on dist/weight.
// Cross-multiplication keeps the comparison exact.
func better(a, b candidate) bool {
	return int64(a.dist)*int64(b.weight) < int64(b.dist)*int64(a.weight)
}

// Planner builds one trip at a time by greedy extension.
type Planner struct {
	reg   *Registry
	check FeasibilityChecker

	checks     int
	rejections int
	fallbacks  int
}

func NewPlanner(reg *Registry, check FeasibilityChecker) *Planner {
	return &Planner{reg: reg, check: check}
}

// Plan returns the pickup order for one cycle that starts at from with an
// empty hand. pending must be in ascending id order; among equal scores the
// first id visited wins. fallback is set when the greedy pass found nothing
// and a single-box trip was chosen instead. ErrStuck is returned when
// pending is not empty and no box can be moved at all.
func (p *Planner) Plan(from Pos, pending []int) (plan []int, fallback bool, err error) {
	if len(pending) == 0 {
		return nil, false, nil
	}
	inPlan := make(map[int]bool, len(pending))
	for {
		anchor := from
		if len(plan) > 0 {
			anchor = p.reg.boxes[plan[len(plan)-1]].Pos
		}
		best, found := p.pick(anchor, pending, inPlan, plan)
		if !found {
			break
		}
		plan = append(plan, best.id)
		inPlan[best.id] = true
		if len(plan) == len(pending) {
			break
		}
	}
	if len(plan) > 0 {
		return plan, false, nil
	}

	p.fallbacks++
	best, found := p.pick(from, pending, nil, nil)
	if !found {
		return nil, true, ErrStuck
	}
	return []int{best.id}, true, nil
}

// pick scores every pending box not yet planned as the next stop after
// anchor and returns the best feasible one.
func (p *Planner) pick(anchor Pos, pending []int, inPlan map[int]bool, plan []int) (candidate, bool) {
	var best candidate
	found := false
	for _, id := range pending {
		if inPlan[id] {
			continue
		}
		b := p.reg.boxes[id]
		c := candidate{id: id, dist: anchor.Dist(b.Pos), weight: b.Weight}
		next := make([]int, len(plan), len(plan)+1)
		copy(next, plan)
		p.checks++
		if !p.check.Feasible(append(next, id)) {
			p.rejections++
			continue
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best, found
}

func (p *Planner) Fallbacks() int { return p.fallbacks }

// Checks reports how many plans were put to the checker and how many it
// turned down, whichever checker is in use.
func (p *Planner) Checks() (checks, rejections int) { return p.checks, p.rejections }
