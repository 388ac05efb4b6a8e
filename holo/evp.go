// SPDX-License-Identifier: MIT
// evp.go - eigenvalue-based multi-point synthesis.
//
// Focal phases come from the principal eigenvector of the normalized
// focus-to-focus matrix; the drive is a Tikhonov-regularized fit to them.

package holo

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// EVP is the eigenvalue method. The principal eigenvector of the weighted
// focus-space Gram matrix fixes the focus phases; the drive is then the
// Tikhonov-regularized least-squares fit
//
//	q = (GᴴG + Σ²)⁻¹·Gᴴ·f,   f = |p|·e^{i·arg u},
//
// with σₙ = (Σₘ|Gₘₙ|·|pₘ| / M)^{γ/2}.
type EVP struct {
	// Gamma is the regularization exponent; must be finite and ≥ 0.
	Gamma float64
}

// DefaultEVP returns EVP with Gamma = 1.
func DefaultEVP() EVP { return EVP{Gamma: 1} }

// Name returns "evp".
func (EVP) Name() string { return NameEVP }

// Validate checks Gamma is finite and non-negative.
func (s EVP) Validate() error {
	if !(s.Gamma >= 0) || math.IsInf(s.Gamma, 0) {
		return paramError(s.Name(), "gamma %g must be finite and >= 0", s.Gamma)
	}
	return nil
}

// Solve computes the eigenvector phases and the regularized fit.
//
// Complexity: O(M·N² + N³); the N×N solve dominates.
func (s EVP) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}
	M, N := pr.m, pr.n

	// Stage 1: D = diag(|pₘ| / |Σₙ Gₘₙ|)
	sqrtD := make([]float64, M)
	for m := 0; m < M; m++ {
		var sum complex128
		for n := 0; n < N; n++ {
			sum += pr.g.At(m, n)
		}
		if a := cmplx.Abs(sum); a > 0 {
			sqrtD[m] = math.Sqrt(pr.amps[m] / a)
		}
	}

	// Stage 2: R = D^½·G·Gᴴ·D^½
	r := mat.NewCDense(M, M, nil)
	if err := ctx.Gemm(backend.NoTrans, backend.ConjTrans, 1, pr.g, pr.g, 0, r); err != nil {
		return nil, stepError(s.Name(), "gram", err)
	}
	for i := 0; i < M; i++ {
		for j := 0; j < M; j++ {
			r.Set(i, j, r.At(i, j)*complex(sqrtD[i]*sqrtD[j], 0))
		}
	}

	// Stage 3: focus phases
	_, u, err := ctx.MaxEigen(r)
	if err != nil {
		return nil, stepError(s.Name(), "eigen", err)
	}
	f := make([]complex128, M)
	ctx.Phase(f, u)
	for m := range f {
		if f[m] == 0 {
			f[m] = 1
		}
		f[m] *= complex(pr.amps[m], 0)
	}

	// Stage 4: (GᴴG + Σ²)·q = Gᴴf
	a := mat.NewCDense(N, N, nil)
	if err := ctx.Gemm(backend.ConjTrans, backend.NoTrans, 1, pr.g, pr.g, 0, a); err != nil {
		return nil, stepError(s.Name(), "gram", err)
	}
	for n := 0; n < N; n++ {
		var sum float64
		for m := 0; m < M; m++ {
			sum += cmplx.Abs(pr.g.At(m, n)) * pr.amps[m]
		}
		sigma := math.Pow(sum/float64(M), s.Gamma/2)
		a.Set(n, n, a.At(n, n)+complex(sigma*sigma, 0))
	}
	rhs := make([]complex128, N)
	if err := pr.backward(ctx, f, rhs); err != nil {
		return nil, stepError(s.Name(), "backpropagate", err)
	}
	q := mat.NewCDense(N, 1, nil)
	if err := ctx.Solve(a, mat.NewCDense(N, 1, rhs), q); err != nil {
		return nil, stepError(s.Name(), "solve", err)
	}
	return &Solution{Q: q.RawCMatrix().Data, Iterations: 0, Converged: true}, nil
}
