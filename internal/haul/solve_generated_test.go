package haul_test

import (
	"testing"

	"boxhaul/internal/gridio"
	"boxhaul/internal/haul"
	"boxhaul/internal/util"
)

func TestSolve_GeneratedInstances(t *testing.T) {
	for i := 0; i < 20; i++ {
		seed := util.Derive(12345, i)
		g := gridio.Generate(util.New(seed), 10, 30)
		reg, err := g.Registry()
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		res, err := haul.NewSolver(reg, haul.Options{}).Solve()
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(res.Violations) != 0 {
			t.Fatalf("seed %d: violations %v", seed, res.Violations)
		}
		if res.Delivered() != reg.Len() {
			t.Fatalf("seed %d: delivered %d of %d", seed, res.Delivered(), reg.Len())
		}
		picks := 0
		for _, a := range res.Actions {
			if a == haul.ActPick {
				picks++
			}
		}
		if picks != reg.Len() {
			t.Fatalf("seed %d: picks=%d", seed, picks)
		}
		for id := 0; id < reg.Len(); id++ {
			if reg.Durability(id) <= 0 {
				t.Fatalf("seed %d: box %d crushed", seed, id)
			}
		}
	}
}
