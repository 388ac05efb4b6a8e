// SPDX-License-Identifier: MIT
// greedy.go - single-pass coordinate search over quantized phases.
//
// Notes:
//   - Deterministic: index order, fixed candidates, first best wins.
//   - The LeastSquares objective fits the target ratios, not absolute pressure.

package holo

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// Objective is the per-candidate cost minimized by Greedy.
type Objective uint8

const (
	// Intensity minimizes −Σₘ|pₘ|·|cₘ|: maximize the weighted focal magnitudes.
	Intensity Objective = iota
	// LeastSquares minimizes Σₘ(|cₘ| − s·|pₘ|)², where s·|p| is the target
	// rescaled to the field the unit-amplitude Naive phases reach.
	LeastSquares
)

// String returns "intensity" or "least_squares".
func (o Objective) String() string {
	switch o {
	case Intensity:
		return "intensity"
	case LeastSquares:
		return "least_squares"
	default:
		return fmt.Sprintf("Objective(%d)", uint8(o))
	}
}

// tieTolerance is the relative margin by which a later candidate must beat
// the current best; ties go to the earlier candidate.
const tieTolerance = 1e-12

// Greedy is a single pass of coordinate search. Transducers are visited in
// index order; transducer n tries PhaseDiv unit-amplitude phases
// φₙ + 2πk/PhaseDiv (φₙ the Naive phase) against the field of the
// transducers already fixed, and keeps the first best one.
type Greedy struct {
	// PhaseDiv is the number of phase candidates; must be ≥ 1.
	PhaseDiv int
	// Objective selects the cost.
	Objective Objective
}

// DefaultGreedy returns Greedy with PhaseDiv = 16 and the Intensity objective.
func DefaultGreedy() Greedy { return Greedy{PhaseDiv: 16, Objective: Intensity} }

// DefaultLSSGreedy returns Greedy with PhaseDiv = 16 and the LeastSquares
// objective.
func DefaultLSSGreedy() Greedy { return Greedy{PhaseDiv: 16, Objective: LeastSquares} }

// Name returns "greedy" or "lssgreedy".
func (s Greedy) Name() string {
	if s.Objective == LeastSquares {
		return NameLSSGreedy
	}
	return NameGreedy
}

// Validate checks PhaseDiv ≥ 1 and a known Objective.
func (s Greedy) Validate() error {
	if s.PhaseDiv < 1 {
		return paramError(s.Name(), "phase_div %d < 1", s.PhaseDiv)
	}
	if s.Objective != Intensity && s.Objective != LeastSquares {
		return paramError(s.Name(), "objective %v", s.Objective)
	}
	return nil
}

// Solve performs one pass; the result is deterministic.
//
// Complexity: O(N·PhaseDiv·M).
func (s Greedy) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}
	M, N := pr.m, pr.n

	naive, err := pr.naive(ctx)
	if err != nil {
		return nil, stepError(s.Name(), "initialize", err)
	}

	bases := make([]complex128, N)
	for n, v := range naive {
		bases[n] = 1
		if a := cmplx.Abs(v); a > 0 {
			bases[n] = v / complex(a, 0)
		}
	}
	targets := pr.amps
	if s.Objective == LeastSquares {
		if targets, err = reachableTargets(ctx, pr, bases); err != nil {
			return nil, stepError(s.Name(), "initialize", err)
		}
	}

	offsets := make([]complex128, s.PhaseDiv)
	for k := range offsets {
		offsets[k] = cmplx.Exp(complex(0, 2*math.Pi*float64(k)/float64(s.PhaseDiv)))
	}

	field := make([]complex128, M)
	col := make([]complex128, M)
	trial := make([]complex128, M)
	mag := make([]float64, M)
	q := make([]complex128, N)

	for n := 0; n < N; n++ {
		base := bases[n]
		for m := 0; m < M; m++ {
			col[m] = pr.g.At(m, n)
		}

		best, bestCost := 0, 0.0
		for k, off := range offsets {
			ph := base * off
			for m := 0; m < M; m++ {
				trial[m] = field[m] + col[m]*ph
			}
			ctx.Magnitude(mag, trial)
			cost := s.cost(mag, targets)
			if k == 0 || cost < bestCost-tieTolerance*math.Abs(bestCost) {
				best, bestCost = k, cost
			}
		}

		q[n] = base * offsets[best]
		for m := 0; m < M; m++ {
			field[m] += col[m] * q[n]
		}
	}
	return &Solution{Q: q, Iterations: 1, Converged: true}, nil
}

// reachableTargets returns s·|p|, with s ≥ 0 the least-squares fit of |p| to
// the focal magnitudes produced by the unit drive bases. The result depends
// only on the ratios of |p|, never on its absolute scale.
func reachableTargets(ctx backend.Context, pr *problem, bases []complex128) ([]float64, error) {
	f := make([]complex128, pr.m)
	if err := pr.forward(ctx, bases, f); err != nil {
		return nil, err
	}
	reach := make([]float64, pr.m)
	ctx.Magnitude(reach, f)

	var num, den float64
	for m, a := range pr.amps {
		num += reach[m] * a
		den += a * a
	}
	targets := make([]float64, pr.m)
	if den == 0 {
		return targets, nil
	}
	scale := num / den
	for m, a := range pr.amps {
		targets[m] = scale * a
	}
	return targets, nil
}

func (s Greedy) cost(mag, amps []float64) float64 {
	var c float64
	switch s.Objective {
	case LeastSquares:
		for m, a := range mag {
			d := a - amps[m]
			c += d * d
		}
	default:
		for m, a := range mag {
			c -= amps[m] * a
		}
	}
	return c
}
