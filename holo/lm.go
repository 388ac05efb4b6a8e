// SPDX-License-Identifier: MIT
// lm.go - Levenberg–Marquardt over transducer and focal phases.
//
// Purpose:
//   - Minimize the focal residual over N + M phases with unit amplitudes.
//
// Notes:
//   - The objective is built from H = BᴴB once; each evaluation is one Gemv.
//   - Stopping at KMax is not an error; it is logged at Debug.

package holo

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/internal/monitoring"
	"github.com/katalvlaran/sonora/propagation"
)

// LM fits N transducer phases and M focus phases by Levenberg–Marquardt on
//
//	F(x) = ½‖B·e^{ix}‖²,   B = [G, −diag(|p|)] / max|p|,
//
// with the damping schedule of Madsen, Nielsen and Tingleff. The drive has
// unit amplitude and the phases of the best iterate.
type LM struct {
	// Eps1 stops when ‖∇F‖∞ ≤ Eps1.
	Eps1 float64
	// Eps2 stops when the step ‖h‖ ≤ Eps2·(‖x‖ + Eps2).
	Eps2 float64
	// Tau scales the initial damping μ₀ = Tau·max diag(JᵀJ).
	Tau float64
	// KMax bounds the number of iterations.
	KMax int
	// Initial holds N transducer phases, or N+M transducer and focus phases.
	// Nil starts from the phases of Naive.
	Initial []float64
}

// DefaultLM returns LM with Eps1 = Eps2 = 1e-8, Tau = 1e-3, KMax = 5.
func DefaultLM() LM {
	return LM{Eps1: 1e-8, Eps2: 1e-8, Tau: 1e-3, KMax: 5}
}

// Name returns "lm".
func (LM) Name() string { return NameLM }

// Validate checks Eps1, Eps2 ≥ 0, Tau > 0 and KMax ≥ 0.
func (s LM) Validate() error {
	switch {
	case !(s.Eps1 >= 0):
		return paramError(s.Name(), "eps1 %g < 0", s.Eps1)
	case !(s.Eps2 >= 0):
		return paramError(s.Name(), "eps2 %g < 0", s.Eps2)
	case !(s.Tau > 0) || math.IsInf(s.Tau, 0):
		return paramError(s.Name(), "tau %g must be finite and > 0", s.Tau)
	case s.KMax < 0:
		return paramError(s.Name(), "k_max %d < 0", s.KMax)
	}
	return nil
}

// Solve runs at most s.KMax iterations.
//
// Complexity: O(M·P²) for H, then O(KMax·P³) for the damped solves, P = N+M.
func (s LM) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}
	N, M := pr.n, pr.m
	P := N + M

	// Stage 1: H = BᴴB
	h, err := lmHessian(ctx, pr)
	if err != nil {
		return nil, stepError(s.Name(), "gram", err)
	}
	if err := ctx.Pin(h); err != nil {
		return nil, stepError(s.Name(), "pin", err)
	}

	// Stage 2: start point
	x, err := s.start(ctx, pr)
	if err != nil {
		return nil, err
	}

	// Stage 3: damped Gauss–Newton
	ev := newLMEval(P)
	if err := ev.eval(ctx, h, x); err != nil {
		return nil, stepError(s.Name(), "evaluate", err)
	}
	fx := ev.f
	jtj := mat.NewSymDense(P, nil)
	grad := make([]float64, P)
	ev.normal(h, jtj, grad)

	mu := s.Tau * maxDiag(jtj)
	nu := 2.0
	found := floats.Norm(grad, math.Inf(1)) <= s.Eps1

	step := make([]float64, P)
	negGrad := make([]float64, P)
	xNew := make([]float64, P)
	damped := mat.NewSymDense(P, nil)

	k := 0
	for ; k < s.KMax && !found; k++ {
		damped.CopySym(jtj)
		for i := 0; i < P; i++ {
			damped.SetSym(i, i, damped.At(i, i)+mu)
			negGrad[i] = -grad[i]
		}
		if err := ctx.SolveSym(damped, negGrad, step); err != nil {
			return nil, stepError(s.Name(), "solve", err)
		}

		if floats.Norm(step, 2) <= s.Eps2*(floats.Norm(x, 2)+s.Eps2) {
			found = true
			k++
			break
		}

		floats.AddTo(xNew, x, step)
		if err := ev.eval(ctx, h, xNew); err != nil {
			return nil, stepError(s.Name(), "evaluate", err)
		}
		// L(0) − L(h) = ½·hᵀ(μh − g)
		var gain float64
		for i := range step {
			gain += step[i] * (mu*step[i] - grad[i])
		}
		gain *= 0.5
		rho := (fx - ev.f) / gain

		if gain > 0 && rho > 0 {
			copy(x, xNew)
			fx = ev.f
			ev.normal(h, jtj, grad)
			found = floats.Norm(grad, math.Inf(1)) <= s.Eps1
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			nu = 2
		} else {
			mu *= nu
			nu *= 2
		}
	}
	if !found {
		monitoring.Logger().Debug("holo: lm stopped at k_max", "k_max", s.KMax, "residual", fx)
	}

	q := make([]complex128, N)
	for n := range q {
		q[n] = cmplx.Exp(complex(0, x[n]))
	}
	return &Solution{Q: q, Iterations: k, Converged: found}, nil
}

// start returns the initial parameter vector (transducer phases, then focus
// phases). Missing focus phases are taken from the field of the start drive.
func (s LM) start(ctx backend.Context, pr *problem) ([]float64, error) {
	N, M := pr.n, pr.m
	x := make([]float64, N+M)
	switch len(s.Initial) {
	case N + M:
		copy(x, s.Initial)
		return x, nil
	case N:
		copy(x, s.Initial)
	case 0:
		q, err := pr.naive(ctx)
		if err != nil {
			return nil, stepError(s.Name(), "initialize", err)
		}
		for n, v := range q {
			x[n] = cmplx.Phase(v)
		}
	default:
		return nil, paramError(s.Name(), "len(Initial)=%d, want %d or %d", len(s.Initial), N, N+M)
	}

	t := make([]complex128, N)
	for n := range t {
		t[n] = cmplx.Exp(complex(0, x[n]))
	}
	c := make([]complex128, M)
	if err := pr.forward(ctx, t, c); err != nil {
		return nil, stepError(s.Name(), "initialize", err)
	}
	for m, v := range c {
		x[N+m] = cmplx.Phase(v)
	}
	return x, nil
}

// lmHessian returns BᴴB for B = [G, −diag(|p|)] / max|p|.
func lmHessian(ctx backend.Context, pr *problem) (*mat.CDense, error) {
	N, M := pr.n, pr.m
	scale := floats.Max(pr.amps)
	if scale == 0 {
		scale = 1
	}
	b := mat.NewCDense(M, N+M, nil)
	for m := 0; m < M; m++ {
		for n := 0; n < N; n++ {
			b.Set(m, n, pr.g.At(m, n)/complex(scale, 0))
		}
		b.Set(m, N+m, complex(-pr.amps[m]/scale, 0))
	}
	h := mat.NewCDense(N+M, N+M, nil)
	if err := ctx.Gemm(backend.ConjTrans, backend.NoTrans, 1, b, b, 0, h); err != nil {
		return nil, err
	}
	return h, nil
}

// lmEval holds t = e^{ix}, H·t and F(x) for the last evaluated x.
type lmEval struct {
	t  []complex128
	ht []complex128
	f  float64
}

// newLMEval allocates the buffers for p parameters.
func newLMEval(p int) *lmEval {
	return &lmEval{t: make([]complex128, p), ht: make([]complex128, p)}
}

// eval sets t = e^{ix}, Ht and F(x) = ½·tᴴHt.
func (e *lmEval) eval(ctx backend.Context, h *mat.CDense, x []float64) error {
	for i, v := range x {
		e.t[i] = cmplx.Exp(complex(0, v))
	}
	if err := ctx.Gemv(backend.NoTrans, 1, h, e.t, 0, e.ht); err != nil {
		return err
	}
	var f float64
	for i := range e.t {
		f += real(cmplx.Conj(e.t[i]) * e.ht[i])
	}
	e.f = f / 2
	return nil
}

// normal fills JᵀJ[k,b] = Re(conj(t_k)·H[k,b]·t_b) and ∇F_k = Im(conj(t_k)·(Ht)_k)
// at the last evaluated point.
func (e *lmEval) normal(h *mat.CDense, jtj *mat.SymDense, grad []float64) {
	for k := range e.t {
		ck := cmplx.Conj(e.t[k])
		for b := k; b < len(e.t); b++ {
			jtj.SetSym(k, b, real(ck*h.At(k, b)*e.t[b]))
		}
		grad[k] = imag(ck * e.ht[k])
	}
}

// maxDiag returns the largest diagonal entry of a, or 0 for an empty matrix.
func maxDiag(a *mat.SymDense) float64 {
	var m float64
	for i := 0; i < a.SymmetricDim(); i++ {
		m = math.Max(m, a.At(i, i))
	}
	return m
}
