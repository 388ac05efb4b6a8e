// SPDX-License-Identifier: MIT
// gspat.go - GS with a precomputed focus-to-focus propagator.
//
// All iterations run on the M×M matrix R = G·B, so the per-iteration cost is
// independent of N.

package holo

import (
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// GSPAT is GS with a back-propagator whose columns are normalized by the
// energy each focus receives, B = Gᴴ·diag(1/Σₙ|Gₘₙ|²). Iterations run entirely
// in the M-dimensional focus space through R = G·B; a final compensation
// p̂ = |p|²·γ/|γ|² sets the drive amplitudes.
type GSPAT struct {
	// Repeat is the exact number of iterations.
	Repeat int
}

// DefaultGSPAT returns GSPAT with Repeat = 100.
func DefaultGSPAT() GSPAT { return GSPAT{Repeat: DefaultRepeat} }

// Name returns "gspat".
func (GSPAT) Name() string { return NameGSPAT }

// Validate checks Repeat ≥ 0.
func (s GSPAT) Validate() error {
	if s.Repeat < 0 {
		return paramError(s.Name(), "repeat %d < 0", s.Repeat)
	}
	return nil
}

// Solve runs exactly s.Repeat iterations.
//
// Complexity: O(M²·N + Repeat·M²).
func (s GSPAT) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}

	// Stage 1: B and R = G·B
	b := gspatBackpropagator(pr)
	if err := ctx.Pin(b); err != nil {
		return nil, stepError(s.Name(), "pin", err)
	}
	r := mat.NewCDense(pr.m, pr.m, nil)
	if err := ctx.Gemm(backend.NoTrans, backend.NoTrans, 1, pr.g, b, 0, r); err != nil {
		return nil, stepError(s.Name(), "propagator", err)
	}
	if err := ctx.Pin(r); err != nil {
		return nil, stepError(s.Name(), "pin", err)
	}

	// Stage 2: iterate in focus space
	gamma := make([]complex128, pr.m)
	if err := ctx.Gemv(backend.NoTrans, 1, r, pr.p, 0, gamma); err != nil {
		return nil, stepError(s.Name(), "initialize", err)
	}
	ph := make([]complex128, pr.m)
	for it := 0; it < s.Repeat; it++ {
		if err := gspatStep(ctx, r, pr.p, gamma, ph); err != nil {
			return nil, stepError(s.Name(), "iterate", err)
		}
	}

	// Stage 3: compensate and back-propagate
	for i, g := range gamma {
		a := cmplx.Abs(g)
		if a == 0 {
			ph[i] = 0
			continue
		}
		ph[i] = g * complex(pr.amps[i]*pr.amps[i]/(a*a), 0)
	}
	q := make([]complex128, pr.n)
	if err := ctx.Gemv(backend.NoTrans, 1, b, ph, 0, q); err != nil {
		return nil, stepError(s.Name(), "backpropagate", err)
	}
	return &Solution{Q: q, Iterations: s.Repeat, Converged: true}, nil
}

// gspatBackpropagator returns B[n,m] = conj(G[m,n]) / Σₙ|G[m,n]|².
func gspatBackpropagator(pr *problem) *mat.CDense {
	b := mat.NewCDense(pr.n, pr.m, nil)
	for m := 0; m < pr.m; m++ {
		var energy float64
		for n := 0; n < pr.n; n++ {
			v := pr.g.At(m, n)
			energy += real(v)*real(v) + imag(v)*imag(v)
		}
		if energy == 0 {
			continue
		}
		for n := 0; n < pr.n; n++ {
			b.Set(n, m, cmplx.Conj(pr.g.At(m, n))/complex(energy, 0))
		}
	}
	return b
}

// gspatStep imposes |p| on gamma and propagates once: gamma = R·(|p|·γ/|γ|).
func gspatStep(ctx backend.Context, r *mat.CDense, p, gamma, ph []complex128) error {
	ctx.Phase(ph, gamma)
	ctx.MulElem(ph, ph, p)
	return ctx.Gemv(backend.NoTrans, 1, r, ph, 0, gamma)
}
