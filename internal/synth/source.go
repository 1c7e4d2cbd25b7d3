package synth

import "math/rand/v2"

// Source supplies uniform samples in [0, 1) for white noise generation.
// Implementations are not required to be safe for concurrent use; give
// each concurrently rendered track its own Source.
type Source interface {
	Float64() float64
}

// NewSource returns a deterministic PCG-backed Source for the given seed.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
