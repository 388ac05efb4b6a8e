// SPDX-License-Identifier: MIT

package backend

import (
	"gonum.org/v1/gonum/blas"
)

// Buffer is a device allocation of complex128 elements.
type Buffer interface {
	// Len returns the capacity in elements.
	Len() int
	// Upload copies src into the first len(src) elements.
	Upload(src []complex128) error
	// Download copies the first len(dst) elements into dst.
	Download(dst []complex128) error
	// Release frees the allocation. It is idempotent.
	Release() error
}

// Driver executes the products of the device backend. Matrices are row-major
// with explicit leading dimensions, matching gonum's storage.
type Driver interface {
	Info() Info

	// Alloc reserves n complex128 elements on the device.
	Alloc(n int) (Buffer, error)

	// Zgemm computes C = alpha·op(A)·op(B) + beta·C where op(A) is m×k,
	// op(B) is k×n and C is m×n.
	Zgemm(tA, tB blas.Transpose, m, n, k int,
		alpha complex128, a Buffer, lda int, b Buffer, ldb int,
		beta complex128, c Buffer, ldc int) error

	// Close releases driver-wide resources (queues, programs).
	Close() error
}
