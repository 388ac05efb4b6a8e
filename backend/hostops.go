// SPDX-License-Identifier: MIT
// hostops.go - host kernels shared by every backend.
//
// Purpose:
//   - Shape checks for Gemv/Gemm.
//   - Hermitian principal eigenpair through the real symmetric embedding
//     [[Re, −Im], [Im, Re]] of size 2n. O(n³).
//   - Complex solve through the realified 2n×2n LU; real SPD solve through
//     Cholesky with an LU fallback. O(n³).
//   - Element-wise phase, magnitude and product. O(n).
//
// Notes:
//   - The eigenvector is normalized and its largest entry made real positive,
//     so equal inputs give equal vectors on every backend.

package backend

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/internal/monitoring"
)

// Host-side primitives shared by every Context. The device backend runs only
// the products on its driver, so eigen and solve results are bit-identical
// across implementations.

// opDims returns the shape of op(A).
func opDims(t blas.Transpose, a *mat.CDense) (int, int) {
	r, c := a.Dims()
	if t == blas.NoTrans {
		return r, c
	}
	return c, r
}

// checkGemv validates the operand shapes of y = op(A)·x.
func checkGemv(t blas.Transpose, a *mat.CDense, x, y []complex128) error {
	if a == nil {
		return ErrDimensionMismatch
	}
	r, c := opDims(t, a)
	if len(x) != c || len(y) != r {
		return ErrDimensionMismatch
	}
	return nil
}

// checkGemm validates the operand shapes of C = op(A)·op(B).
func checkGemm(tA, tB blas.Transpose, a, b, c *mat.CDense) error {
	if a == nil || b == nil || c == nil {
		return ErrDimensionMismatch
	}
	ar, ac := opDims(tA, a)
	br, bc := opDims(tB, b)
	cr, cc := c.Dims()
	if ac != br || ar != cr || bc != cc {
		return ErrDimensionMismatch
	}
	return nil
}

// hermitianMaxEigen returns the principal eigenpair of the Hermitian part of a.
func hermitianMaxEigen(a *mat.CDense) (float64, []complex128, error) {
	if a == nil {
		return 0, nil, ErrDimensionMismatch
	}
	n, c := a.Dims()
	if n != c || n == 0 {
		return 0, nil, ErrDimensionMismatch
	}

	// Stage 1: real embedding of H = (A + Aᴴ)/2.
	s := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			h := (a.At(i, j) + cmplx.Conj(a.At(j, i))) / 2
			re, im := real(h), imag(h)
			s.SetSym(i, j, re)
			s.SetSym(n+i, n+j, re)
			s.SetSym(i, n+j, -im)
			s.SetSym(j, n+i, im)
		}
	}

	// Stage 2: symmetric eigendecomposition; values are ascending.
	var eig mat.EigenSym
	if !eig.Factorize(s, true) {
		return 0, nil, ErrEigenFailed
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	top := len(values) - 1

	u := make([]complex128, n)
	for i := 0; i < n; i++ {
		u[i] = complex(vecs.At(i, top), vecs.At(n+i, top))
	}

	// Stage 3: unit norm, largest component real and positive.
	norm := cmplxs.Norm(u, 2)
	if norm == 0 || math.IsNaN(norm) {
		return 0, nil, ErrEigenFailed
	}
	k := cmplxs.MaxAbsIdx(u)
	g := cmplx.Conj(u[k]) / complex(cmplx.Abs(u[k])*norm, 0)
	cmplxs.Scale(g, u)
	u[k] = complex(real(u[k]), 0)

	return values[top], u, nil
}

// complexSolve solves a·X = b through the realified system
//
//	[[Re a, −Im a], [Im a, Re a]] · [Re X; Im X] = [Re b; Im b].
func complexSolve(a, b, dst *mat.CDense) error {
	if a == nil || b == nil || dst == nil {
		return ErrDimensionMismatch
	}
	n, c := a.Dims()
	br, k := b.Dims()
	dr, dc := dst.Dims()
	if n != c || br != n || dr != n || dc != k {
		return ErrDimensionMismatch
	}

	ar := mat.NewDense(2*n, 2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			ar.Set(i, j, real(v))
			ar.Set(n+i, n+j, real(v))
			ar.Set(i, n+j, -imag(v))
			ar.Set(n+i, j, imag(v))
		}
	}
	rhs := mat.NewDense(2*n, k, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			v := b.At(i, j)
			rhs.Set(i, j, real(v))
			rhs.Set(n+i, j, imag(v))
		}
	}

	var x mat.Dense
	if err := x.Solve(ar, rhs); err != nil && !wellPosed(err) {
		return ErrSingular
	}
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			dst.Set(i, j, complex(x.At(i, j), x.At(n+i, j)))
		}
	}
	return nil
}

// symSolve solves the real symmetric system a·x = b. Cholesky is tried first;
// an indefinite a falls back to LU.
func symSolve(a *mat.SymDense, b, dst []float64) error {
	if a == nil {
		return ErrDimensionMismatch
	}
	n := a.SymmetricDim()
	if len(b) != n || len(dst) != n {
		return ErrDimensionMismatch
	}

	rhs := mat.NewVecDense(n, append([]float64(nil), b...))
	var x mat.VecDense

	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.SolveVecTo(&x, rhs); err == nil || wellPosed(err) {
			copy(dst, x.RawVector().Data)
			return nil
		}
	}

	if err := x.SolveVec(a, rhs); err != nil && !wellPosed(err) {
		return ErrSingular
	}
	copy(dst, x.RawVector().Data)
	return nil
}

// wellPosed reports whether a solve error is only an ill-conditioning warning
// with a finite condition number, in which case the result is kept.
func wellPosed(err error) bool {
	var cond mat.Condition
	if !errors.As(err, &cond) {
		return false
	}
	if math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
		return false
	}
	monitoring.Logger().Debug("backend: ill-conditioned solve", "condition", float64(cond))
	return true
}

func phase(dst, src []complex128) {
	if len(dst) != len(src) {
		panic("backend: Phase length mismatch")
	}
	for i, v := range src {
		r := cmplx.Abs(v)
		if r == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = complex(real(v)/r, imag(v)/r)
	}
}

func magnitude(dst []float64, src []complex128) {
	if len(dst) != len(src) {
		panic("backend: Magnitude length mismatch")
	}
	cmplxs.Abs(dst, src)
}

func mulElem(dst, a, b []complex128) {
	if len(dst) != len(a) || len(a) != len(b) {
		panic("backend: MulElem length mismatch")
	}
	cmplxs.MulTo(dst, a, b)
}
