package haul

import (
	"math"
	"testing"
)

func TestDrain_Saturates(t *testing.T) {
	cases := []struct {
		name       string
		d, w, dist int64
		want       int64
	}{
		{"no load", 5, 0, 100, 5},
		{"plain", 100, 3, 4, 88},
		{"product overflows", 100, 1 << 62, 4, math.MinInt64},
		{"already spent", math.MinInt64 + 1, 2, 1, math.MinInt64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := drain(tc.d, tc.w, tc.dist); got != tc.want {
				t.Fatalf("drain(%d,%d,%d)=%d want %d", tc.d, tc.w, tc.dist, got, tc.want)
			}
		})
	}
}

func TestWear_TopBoxCarriesNothing(t *testing.T) {
	boxes := []Box{{ID: 0, Weight: 4}, {ID: 1, Weight: 7}}
	dur := []int64{50, 1}
	if crushed := wear([]int{0, 1}, boxes, dur, 3, false); len(crushed) != 0 {
		t.Fatalf("crushed=%v", crushed)
	}
	if dur[1] != 1 || dur[0] != 50-7*3 {
		t.Fatalf("dur=%v", dur)
	}
}
