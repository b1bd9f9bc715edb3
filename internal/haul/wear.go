package haul

import "math"

// wear applies one leg of movement of length dist to a carry stack.
// stack[0] is the bottom box; each box loses weightOnTop*dist where
// weightOnTop is the total weight stacked above it. It returns the ids whose
// durability ended at or below zero. With stopOnCrush set it returns at the
// first such box and leaves the rest of the stack untouched.
func wear(stack []int, boxes []Box, dur []int64, dist int, stopOnCrush bool) []int {
	if dist == 0 {
		return nil
	}
	var crushed []int
	var weightOnTop int64
	for i := len(stack) - 1; i >= 0; i-- {
		id := stack[i]
		dur[id] = drain(dur[id], weightOnTop, int64(dist))
		if dur[id] <= 0 {
			crushed = append(crushed, id)
			if stopOnCrush {
				return crushed
			}
		}
		weightOnTop += int64(boxes[id].Weight)
	}
	return crushed
}

// drain returns d - w*dist, saturating at math.MinInt64.
func drain(d, w, dist int64) int64 {
	if w == 0 {
		return d
	}
	if w > math.MaxInt64/dist {
		return math.MinInt64
	}
	loss := w * dist
	if d < math.MinInt64+loss {
		return math.MinInt64
	}
	return d - loss
}
