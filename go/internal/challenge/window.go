package challenge

import (
	"fmt"
	"math/rand/v2"
)

const maxWindowWidth = 4

// Window returns the catalog slice [start, end) eligible in a round.
//
// The window grows 1, 3, 4 wide and then slides by two each round:
//
//	round 1: [0, 1)
//	round 2: [0, 3)
//	round 3: [1, 5)
//	round 4: [3, 7)
//
// Bounds are clamped to size; a window pushed past the end of a short catalog
// falls back to its last entries.
func Window(round, size int) (start, end int) {
	if round < 1 || size <= 0 {
		return 0, 0
	}
	end = 2*round - 1
	start = max(0, end-maxWindowWidth)
	if end > size {
		end = size
	}
	if start >= end {
		start = max(0, end-maxWindowWidth)
	}
	return start, end
}

// Select picks a definition uniformly at random from the round window.
func (c Catalog) Select(round int, r *rand.Rand) (Definition, error) {
	start, end := Window(round, len(c))
	if start >= end {
		return nil, fmt.Errorf("round %d: %w", round, ErrNoChallenge)
	}
	return c[start+r.IntN(end-start)], nil
}
