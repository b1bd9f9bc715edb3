package util

import "math/rand"

func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = 1
	}
	src := rand.NewSource(seed)
	return rand.New(src)
}

// Derive gives batch instance i its own seed, independent of which worker
// runs it, so any single instance can be reproduced with -seed.
func Derive(seed int64, i int) int64 {
	return seed + int64(i)*7919
}
