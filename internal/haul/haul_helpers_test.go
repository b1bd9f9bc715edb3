package haul

import "testing"

type spot struct{ r, c, w, d int }

func newReg(t *testing.T, n int, spots ...spot) *Registry {
	t.Helper()
	ws := make([][]int, n)
	ds := make([][]int, n)
	for i := range ws {
		ws[i] = make([]int, n)
		ds[i] = make([]int, n)
	}
	for _, s := range spots {
		ws[s.r][s.c] = s.w
		ds[s.r][s.c] = s.d
	}
	reg, err := NewRegistry(n, ws, ds)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func actionString(as []Action) string {
	b := make([]byte, len(as))
	for i, a := range as {
		b[i] = byte(a)
	}
	return string(b)
}
