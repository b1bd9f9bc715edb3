package gridio

import "math/rand"

const (
	MaxWeight     = 100
	MaxDurability = 100000
)

// Generate places boxes on random cells of an n x n grid, never on the
// origin. boxes <= 0 fills every other cell.
func Generate(rng *rand.Rand, n, boxes int) *Grid {
	g := &Grid{N: n, Weights: make([][]int, n), Durabilities: make([][]int, n)}
	for i := 0; i < n; i++ {
		g.Weights[i] = make([]int, n)
		g.Durabilities[i] = make([]int, n)
	}
	cells := n*n - 1
	if boxes <= 0 || boxes > cells {
		boxes = cells
	}
	for _, k := range rng.Perm(cells)[:boxes] {
		k++
		r, c := k/n, k%n
		g.Weights[r][c] = 1 + rng.Intn(MaxWeight)
		g.Durabilities[r][c] = 1 + rng.Intn(MaxDurability)
	}
	return g
}
