package station

import (
	"math/rand/v2"
	"sync"
)

// Random is the randomness the station draws on: playlist shuffles, intro
// coin flips and outro picks.
type Random interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// lockedRand makes a *rand.Rand safe for concurrent listeners.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandom returns a deterministic source for the given seeds.
func NewRandom(seed1, seed2 uint64) Random {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

// DefaultRandom returns a randomly seeded source.
func DefaultRandom() Random {
	return NewRandom(rand.Uint64(), rand.Uint64())
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

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
