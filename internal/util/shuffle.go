package util

import (
	"math/rand"
	"time"
)

// Shuffle returns a copy of items in uniformly random order (Fisher-Yates).
// Each call draws from a fresh source; permutations are not reproducible.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)

	if len(shuffled) < 2 {
		return shuffled
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}
