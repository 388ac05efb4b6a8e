// SPDX-License-Identifier: MIT
// rng.go - deterministic random streams for the randomized solvers.
//
// Policy: seed 0 selects a fixed default seed; streams never depend on time.

package holo

import "math/rand/v2"

// defaultSeed is used when a solver is given seed 0, so the zero value of a
// parameter struct is still reproducible.
const defaultSeed uint64 = 1

// rngFromSeed returns a deterministic PCG stream for seed.
// Policy: seed 0 ⇒ defaultSeed; otherwise the seed is used verbatim.
// A *rand.Rand is not goroutine-safe; solvers create one per Solve.
func rngFromSeed(seed uint64) *rand.Rand {
	s := seed
	if s == 0 {
		s = defaultSeed
	}
	return rand.New(rand.NewPCG(s, deriveSeed(s, 1)))
}

// deriveSeed mixes a parent seed and a stream identifier with the
// SplitMix64 finalizer, giving PCG an increment uncorrelated with its state.
func deriveSeed(parent, stream uint64) uint64 {
	x := parent ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
