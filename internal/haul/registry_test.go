package haul

import (
	"errors"
	"testing"
)

func TestRegistry_RowMajorIDs(t *testing.T) {
	reg := newReg(t, 4, spot{2, 1, 3, 30}, spot{0, 3, 1, 10}, spot{0, 0, 2, 20})
	if reg.Len() != 3 {
		t.Fatalf("len=%d want 3", reg.Len())
	}
	want := []Pos{{0, 0}, {0, 3}, {2, 1}}
	for id, p := range want {
		if got := reg.Box(id).Pos; got != p {
			t.Fatalf("box %d at %v want %v", id, got, p)
		}
		if got, ok := reg.BoxAt(p); !ok || got != id {
			t.Fatalf("BoxAt(%v)=%d,%v want %d", p, got, ok, id)
		}
	}
	if _, ok := reg.BoxAt(Pos{1, 1}); ok {
		t.Fatalf("empty cell reported a box")
	}
	if _, ok := reg.BoxAt(Pos{-1, 0}); ok {
		t.Fatalf("out of bounds cell reported a box")
	}
}

func TestRegistry_ClearAndSnapshot(t *testing.T) {
	reg := newReg(t, 3, spot{1, 1, 2, 50})
	snap := reg.Snapshot()
	snap[0] = -1
	if reg.Durability(0) != 50 {
		t.Fatalf("snapshot write leaked into registry: %d", reg.Durability(0))
	}
	reg.Clear(Pos{1, 1})
	if _, ok := reg.BoxAt(Pos{1, 1}); ok {
		t.Fatalf("cell still holds a box after Clear")
	}
	if reg.Box(0).Weight != 2 {
		t.Fatalf("Clear must not drop the box record")
	}
}

func TestRegistry_RejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		n    int
		ws   [][]int
		ds   [][]int
	}{
		{"zero size", 0, nil, nil},
		{"short rows", 2, [][]int{{1, 1}}, [][]int{{1, 1}}},
		{"narrow row", 2, [][]int{{1, 1}, {1}}, [][]int{{1, 1}, {1, 1}}},
		{"dead box", 1, [][]int{{3}}, [][]int{{0}}},
		{"heavy box", 1, [][]int{{1 << 62}}, [][]int{{100}}},
		{"tough box", 1, [][]int{{1}}, [][]int{{MaxValue + 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry(tc.n, tc.ws, tc.ds)
			if !errors.Is(err, ErrInvalidGrid) {
				t.Fatalf("err=%v want ErrInvalidGrid", err)
			}
		})
	}
}

func TestRegistry_NoBoxWhereWeightNotPositive(t *testing.T) {
	reg, err := NewRegistry(2, [][]int{{0, -1}, {0, 4}}, [][]int{{0, 0}, {9, 7}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if reg.Len() != 1 || reg.Box(0).Pos != (Pos{1, 1}) {
		t.Fatalf("boxes=%v", reg.Boxes())
	}
}

func TestRegistry_HeavyLoadStillWears(t *testing.T) {
	// The heaviest legal box on top of a light one for the longest leg of
	// a 1000 grid must still crush it rather than wrap around.
	const n = 1000
	ws := make([][]int, n)
	ds := make([][]int, n)
	for i := range ws {
		ws[i] = make([]int, n)
		ds[i] = make([]int, n)
	}
	ws[0][1], ds[0][1] = 1, MaxValue
	ws[n-1][n-1], ds[n-1][n-1] = MaxValue, MaxValue
	reg, err := NewRegistry(n, ws, ds)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	out := NewSimulator(reg).Simulate([]int{0, 1})
	if out.Feasible || out.Crushed != 0 {
		t.Fatalf("outcome=%+v, light box must be crushed", out)
	}
}
