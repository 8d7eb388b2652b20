package testutil

import (
	"math/rand"
	"strconv"
	"sync"
)

// RNG is a seeded random source for reproducible fixtures. It is safe for
// concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset rewinds the sequence to the initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns an int in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Ints returns n integers in [lo, hi).
func (r *RNG) Ints(n, lo, hi int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int, n)
	for i := range out {
		out[i] = lo + r.rand.Intn(hi-lo)
	}
	return out
}

// Floats returns n floats in [0, 1).
func (r *RNG) Floats(n int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	for i := range out {
		out[i] = r.rand.Float64()
	}
	return out
}

// Mask generates a boolean mask of length n.
// rate is the probability that an entry is true (0.3 = 30% true).
func (r *RNG) Mask(n int, rate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	mask := make([]bool, n)
	for i := range n {
		mask[i] = r.rand.Float64() < rate
	}
	return mask
}

// Labels returns n distinct string labels in random order.
func (r *RNG) Labels(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, n)
	for i, p := range r.rand.Perm(n) {
		out[i] = "r" + strconv.Itoa(p)
	}
	return out
}

// Sample returns k distinct positions of [0, n) in random order.
func (r *RNG) Sample(n, k int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.rand.Perm(n)[:k]
}
