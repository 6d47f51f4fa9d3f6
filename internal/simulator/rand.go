package simulator

import (
	"math/rand/v2"
	"sync"
)

// Rand is the randomness the drift simulator consumes. *rand.Rand satisfies
// it; tests supply scripted sources to assert exact trajectories.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// lockedRand serializes access to a *rand.Rand, which is not safe for
// concurrent use on its own.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a concurrency-safe PCG source. Equal seeds give equal sequences.
func NewRand(seed uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandomSource returns a concurrency-safe source seeded from the runtime.
func NewRandomSource() Rand {
	return NewRand(rand.Uint64())
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// uniform draws from [lo, hi).
func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// intBetween draws an integer from [lo, hi] inclusive.
func intBetween(r Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func chance(r Rand, p float64) bool {
	return r.Float64() < p
}
