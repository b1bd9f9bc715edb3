package haul

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidGrid = errors.New("haul: invalid grid")

// MaxValue bounds weights and durabilities so that wear products stay
// inside int64 for any grid that fits in memory.
const MaxValue = math.MaxInt32

type Box struct {
	ID         int   `json:"id"`
	Pos        Pos   `json:"pos"`
	Weight     int   `json:"weight"`
	Durability int64 `json:"durability"`
}

// Registry owns the static box table and the one live copy of box
// durability. Speculative code works on Snapshot() values only.
type Registry struct {
	n     int
	boxes []Box
	dur   []int64
	cells []int
}

// NewRegistry builds the box table from row-major weight and durability
// matrices. A weight <= 0 means the cell holds no box.
func NewRegistry(n int, weights, durabilities [][]int) (*Registry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: size %d", ErrInvalidGrid, n)
	}
	if len(weights) != n || len(durabilities) != n {
		return nil, fmt.Errorf("%w: want %d rows, got %d weights and %d durabilities",
			ErrInvalidGrid, n, len(weights), len(durabilities))
	}
	r := &Registry{n: n, cells: make([]int, n*n)}
	for i := 0; i < n; i++ {
		if len(weights[i]) != n || len(durabilities[i]) != n {
			return nil, fmt.Errorf("%w: row %d has wrong width", ErrInvalidGrid, i)
		}
		for j := 0; j < n; j++ {
			r.cells[i*n+j] = -1
			if weights[i][j] <= 0 {
				continue
			}
			if weights[i][j] > MaxValue || durabilities[i][j] > MaxValue {
				return nil, fmt.Errorf("%w: box at (%d,%d) weight %d durability %d exceeds %d",
					ErrInvalidGrid, i, j, weights[i][j], durabilities[i][j], MaxValue)
			}
			if durabilities[i][j] <= 0 {
				return nil, fmt.Errorf("%w: box at (%d,%d) has durability %d", ErrInvalidGrid, i, j, durabilities[i][j])
			}
			id := len(r.boxes)
			r.boxes = append(r.boxes, Box{
				ID:         id,
				Pos:        Pos{R: i, C: j},
				Weight:     weights[i][j],
				Durability: int64(durabilities[i][j]),
			})
			r.dur = append(r.dur, int64(durabilities[i][j]))
			r.cells[i*n+j] = id
		}
	}
	return r, nil
}

func (r *Registry) Size() int               { return r.n }
func (r *Registry) Len() int                { return len(r.boxes) }
func (r *Registry) Box(id int) Box          { return r.boxes[id] }
func (r *Registry) Durability(id int) int64 { return r.dur[id] }

// Boxes returns a copy of the static box table.
func (r *Registry) Boxes() []Box {
	out := make([]Box, len(r.boxes))
	copy(out, r.boxes)
	return out
}

// IDs lists every box id in ascending order.
func (r *Registry) IDs() []int {
	ids := make([]int, len(r.boxes))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Snapshot returns an independent copy of the live durability values.
func (r *Registry) Snapshot() []int64 {
	out := make([]int64, len(r.dur))
	copy(out, r.dur)
	return out
}

func (r *Registry) BoxAt(p Pos) (int, bool) {
	if !p.In(r.n) {
		return -1, false
	}
	id := r.cells[p.R*r.n+p.C]
	return id, id >= 0
}

// Clear marks the cell at p as empty.
func (r *Registry) Clear(p Pos) {
	if p.In(r.n) {
		r.cells[p.R*r.n+p.C] = -1
	}
}
