package generation

import (
	"math/rand/v2"
)

// RandomSource is the source of every stochastic decision taken during
// generation.
type RandomSource interface {
	// Int returns an integer in [lo, hi). It returns lo when hi <= lo.
	Int(lo, hi int) int

	// Float64 returns a float in [0, 1).
	Float64() float64
}

// SeededSource is a deterministic RandomSource: two sources created with the
// same seed return the same values for the same sequence of calls.
type SeededSource struct {
	rng *rand.Rand
}

// NewSeededSource creates a random source seeded with the given seed.
func NewSeededSource(seed int64) *SeededSource {
	return &SeededSource{
		rng: rand.New(rand.NewPCG(uint64(seed), 0)),
	}
}

func (s *SeededSource) Int(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}

func (s *SeededSource) Float64() float64 {
	return s.rng.Float64()
}
