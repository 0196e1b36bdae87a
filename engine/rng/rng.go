// Package rng wraps math/rand with deterministic position tracking.
// Position counts the values consumed from the underlying source,
// enabling save/restore of the random stream: every outcome in the
// engine flows through this type.
package rng

import "math/rand"

// countingSource counts every value the generator pulls from the
// underlying source. Counting at this level keeps Restore exact even
// when a draw rejects and re-pulls internally.
type countingSource struct {
	src rand.Source
	n   int64
}

func (c *countingSource) Int63() int64 {
	c.n++
	return c.src.Int63()
}

func (c *countingSource) Seed(seed int64) {
	c.src.Seed(seed)
}

// RNG is a seeded random source. It is the engine's sole source of
// non-determinism; the same seed and call sequence reproduce a run.
type RNG struct {
	seed int64
	cnt  *countingSource
	src  *rand.Rand
}

// New creates a deterministic RNG from a seed.
func New(seed int64) *RNG {
	cnt := &countingSource{src: rand.NewSource(seed)}
	return &RNG{
		seed: seed,
		cnt:  cnt,
		src:  rand.New(cnt),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.src.Intn(sides) + 1
}

// Intn returns a random integer in [0, n).
func (r *RNG) Intn(n int) int {
	return r.src.Intn(n)
}

// Percent rolls 1d100 against a success rate and reports success.
func (r *RNG) Percent(rate int) bool {
	return r.Roll(100) <= rate
}

// Chance reports success with the given probability in [0,1].
func (r *RNG) Chance(p float64) bool {
	return r.src.Float64() < p
}

// Jitter scales value by a uniform multiplier in [1-spread, 1+spread].
func (r *RNG) Jitter(value int, spread float64) int {
	m := 1 - spread + r.src.Float64()*2*spread
	return int(float64(value) * m)
}

// WeightedIndex returns an index chosen by weighted random selection:
// roll in [1, sum(weights)], first index whose cumulative weight covers
// the roll. A zero (or negative) total degenerates to a uniform pick, so
// a non-empty slice always yields an index.
func (r *RNG) WeightedIndex(weights []int) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return r.Intn(len(weights))
	}
	roll := r.Roll(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll <= cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Pick returns a uniformly chosen element of a non-empty slice.
func Pick[T any](r *RNG, items []T) T {
	return items[r.Intn(len(items))]
}

// Seed returns the seed this RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of source values consumed since creation.
func (r *RNG) Position() int64 {
	return r.cnt.n
}

// Restore creates an RNG and advances it to the given position. This
// reproduces the exact stream state for save/load.
func Restore(seed int64, position int64) *RNG {
	r := New(seed)
	for r.cnt.n < position {
		r.cnt.Int63()
	}
	return r
}
