// SPDX-License-Identifier: MIT

package backend

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/mat"
)

// Transposition flags accepted by Gemv and Gemm.
const (
	NoTrans   = blas.NoTrans
	Trans     = blas.Trans
	ConjTrans = blas.ConjTrans
)

// Info describes a backend implementation.
type Info struct {
	Name        string
	Device      string
	Description string
}

// Backend is a factory of per-solve contexts. Implementations must be safe for
// concurrent Open calls. The caller that obtained a Backend owns it and
// closes it.
type Backend interface {
	Info() Info
	// Open allocates the state of one solve.
	Open() (Context, error)
	// Close releases what the backend holds for its whole life (device
	// queue, compiled kernels). Contexts are closed first; device work in
	// contexts opened afterwards fails with ErrClosed.
	Close() error
}

// Context provides the primitives of one solve. A Context is not safe for
// concurrent use; open one per goroutine.
type Context interface {
	// Pin declares a immutable for the remaining life of the context so an
	// implementation may keep it resident (e.g. on a device).
	Pin(a *mat.CDense) error

	// Gemv computes y = alpha·op(A)·x + beta·y.
	Gemv(t blas.Transpose, alpha complex128, a *mat.CDense, x []complex128, beta complex128, y []complex128) error

	// Gemm computes C = alpha·op(A)·op(B) + beta·C.
	Gemm(tA, tB blas.Transpose, alpha complex128, a, b *mat.CDense, beta complex128, c *mat.CDense) error

	// MaxEigen returns the largest eigenvalue of the Hermitian part of a and a
	// unit eigenvector whose largest-magnitude component is real and positive.
	MaxEigen(a *mat.CDense) (float64, []complex128, error)

	// Solve solves a·X = b for square a and stores X into dst (n×k).
	Solve(a, b, dst *mat.CDense) error

	// SolveSym solves the real symmetric system a·x = b into dst.
	SolveSym(a *mat.SymDense, b, dst []float64) error

	// Phase stores src[i]/|src[i]| into dst (zero stays zero).
	Phase(dst, src []complex128)

	// Magnitude stores |src[i]| into dst.
	Magnitude(dst []float64, src []complex128)

	// MulElem stores a[i]·b[i] into dst.
	MulElem(dst, a, b []complex128)

	// Close releases every resource owned by the context. It is idempotent.
	Close() error
}
