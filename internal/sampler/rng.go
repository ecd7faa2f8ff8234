package sampler

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform integers in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalRNG struct{}

func (globalRNG) IntN(n int) int { return rand.IntN(n) }

// DefaultSource draws from the runtime-seeded math/rand/v2 generator.
func DefaultSource() RandomSource { return globalRNG{} }

// Reproducible source for tests and simulations.
type seededRNG struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewSeededSource(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
