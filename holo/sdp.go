// SPDX-License-Identifier: MIT
// sdp.go - semidefinite relaxation of the phase-retrieval problem.
//
// Purpose:
//   - Solve the relaxation over X ⪰ 0 (M×M) by randomized block-coordinate
//     updates, then recover focal phases from the principal eigenvector.
//
// Notes:
//   - The update order is drawn from a PCG stream seeded by SDP.Seed.

package holo

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// SDP relaxes phase-only synthesis to a semidefinite program over the focus
// phases,
//
//	min tr(X·Mx)  s.t.  X ⪰ 0, diag(X) = 1,   Mx = α·P·(GGᴴ + αI)⁻¹·P,
//
// where P = diag(|p|). The program is solved approximately by Repeat
// block-coordinate updates on randomly chosen rows of X. The principal
// eigenvector u of X gives the focus phases and q = Gᴴ(GGᴴ + αI)⁻¹·P·u.
type SDP struct {
	// Alpha regularizes the pseudo-inverse (GGᴴ + αI)⁻¹; must be > 0.
	Alpha float64
	// Lambda scales every block update; must be > 0.
	Lambda float64
	// Repeat is the number of block updates.
	Repeat int
	// Seed selects the row sequence; 0 uses the package default seed.
	Seed uint64
}

// DefaultSDP returns SDP with Alpha = 1e-3, Lambda = 0.8, Repeat = 100.
func DefaultSDP() SDP {
	return SDP{Alpha: 1e-3, Lambda: 0.8, Repeat: DefaultRepeat}
}

// Name returns "sdp".
func (SDP) Name() string { return NameSDP }

// Validate checks Alpha > 0, Lambda > 0 and Repeat ≥ 0.
func (s SDP) Validate() error {
	switch {
	case !(s.Alpha > 0) || math.IsInf(s.Alpha, 0):
		return paramError(s.Name(), "alpha %g must be finite and > 0", s.Alpha)
	case !(s.Lambda > 0) || math.IsInf(s.Lambda, 0):
		return paramError(s.Name(), "lambda %g must be finite and > 0", s.Lambda)
	case s.Repeat < 0:
		return paramError(s.Name(), "repeat %d < 0", s.Repeat)
	}
	return nil
}

// Solve runs the relaxation. The result depends only on the inputs and Seed.
//
// Complexity: O(M²·N + M³ + Repeat·M²).
func (s SDP) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}
	M := pr.m

	// Stage 1: K = (GGᴴ + αI)⁻¹
	a := mat.NewCDense(M, M, nil)
	if err := ctx.Gemm(backend.NoTrans, backend.ConjTrans, 1, pr.g, pr.g, 0, a); err != nil {
		return nil, stepError(s.Name(), "gram", err)
	}
	for i := 0; i < M; i++ {
		a.Set(i, i, a.At(i, i)+complex(s.Alpha, 0))
	}
	k := mat.NewCDense(M, M, nil)
	if err := ctx.Solve(a, identity(M), k); err != nil {
		return nil, stepError(s.Name(), "solve", err)
	}

	// Stage 2: Mx = α·P·K·P
	mx := mat.NewCDense(M, M, nil)
	for i := 0; i < M; i++ {
		for j := 0; j < M; j++ {
			mx.Set(i, j, complex(s.Alpha*pr.amps[i]*pr.amps[j], 0)*k.At(i, j))
		}
	}

	// Stage 3: block-coordinate descent
	x := identity(M)
	rng := rngFromSeed(s.Seed)
	col := make([]complex128, M)
	v := make([]complex128, M)
	for it := 0; it < s.Repeat; it++ {
		if err := sdpStep(ctx, x, mx, rng.IntN(M), s.Lambda, col, v); err != nil {
			return nil, stepError(s.Name(), "iterate", err)
		}
	}

	// Stage 4: rank-1 extraction
	_, u, err := ctx.MaxEigen(x)
	if err != nil {
		return nil, stepError(s.Name(), "eigen", err)
	}

	// Stage 5: q = Gᴴ·K·P·u
	for i := range u {
		u[i] *= complex(pr.amps[i], 0)
	}
	ku := make([]complex128, M)
	if err := ctx.Gemv(backend.NoTrans, 1, k, u, 0, ku); err != nil {
		return nil, stepError(s.Name(), "backpropagate", err)
	}
	q := make([]complex128, pr.n)
	if err := pr.backward(ctx, ku, q); err != nil {
		return nil, stepError(s.Name(), "backpropagate", err)
	}
	return &Solution{Q: q, Iterations: s.Repeat, Converged: true}, nil
}

// sdpStep updates row and column i of x from column i of mx (diagonal entry
// excluded). A non-positive curvature clears the row and column.
func sdpStep(ctx backend.Context, x, mx *mat.CDense, i int, lambda float64, col, v []complex128) error {
	M := len(col)
	for r := 0; r < M; r++ {
		col[r] = mx.At(r, i)
	}
	col[i] = 0
	if err := ctx.Gemv(backend.NoTrans, 1, x, col, 0, v); err != nil {
		return err
	}

	gamma := real(cmplxs.Dot(v, col))
	if gamma > 0 {
		cmplxs.Scale(complex(-math.Sqrt(lambda/gamma), 0), v)
		for r := 0; r < M; r++ {
			x.Set(i, r, cmplx.Conj(v[r]))
		}
		for r := 0; r < M; r++ {
			x.Set(r, i, v[r])
		}
		return nil
	}
	for r := 0; r < M; r++ {
		x.Set(i, r, 0)
		x.Set(r, i, 0)
	}
	return nil
}
