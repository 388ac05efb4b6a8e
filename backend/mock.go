// SPDX-License-Identifier: MIT
// mock.go - host-memory Driver for the device code path.
//
// Purpose:
//   - Exercise device.go (upload, zgemm, download, release) without an
//     accelerator, with results matching the CPU backend.
//   - Count live buffers and optionally fail allocations so tests can observe
//     release on success and failure paths.
//
// Notes:
//   - Zgemm is a plain triple loop over row-major buffers. O(m·n·k).

package backend

import (
	"errors"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/blas"
)

// MockName is the registry name of the device backend over the mock driver.
const MockName = "mock"

// errForeignBuffer is returned when a buffer from another driver is passed in.
var errForeignBuffer = errors.New("backend: buffer does not belong to this driver")

// MockDriver is a Driver backed by host memory with its own naive kernels. It
// exercises the device code path on machines without an accelerator and
// counts live allocations so tests can check for leaks.
type MockDriver struct {
	mu     sync.Mutex
	live   int
	total  int
	limit  int
	closed bool
}

// MockOption configures a MockDriver.
type MockOption func(*MockDriver)

// WithAllocLimit makes the n+1-th allocation fail with ErrOutOfMemory.
// Panics if n < 0.
func WithAllocLimit(n int) MockOption {
	if n < 0 {
		panic("backend: WithAllocLimit(negative)")
	}
	return func(d *MockDriver) { d.limit = n }
}

// NewMockDriver returns an empty mock driver.
func NewMockDriver(opts ...MockOption) *MockDriver {
	d := &MockDriver{limit: -1}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Info describes the mock device.
func (d *MockDriver) Info() Info {
	return Info{Name: MockName, Device: "host", Description: "host-memory mock device"}
}

// Live returns the number of allocations not yet released.
func (d *MockDriver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// Alloc reserves n elements of host memory.
func (d *MockDriver) Alloc(n int) (Buffer, error) {
	if n <= 0 {
		return nil, ErrDimensionMismatch
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}
	if d.limit >= 0 && d.total >= d.limit {
		return nil, ErrOutOfMemory
	}
	d.total++
	d.live++
	return &mockBuffer{drv: d, data: make([]complex128, n)}, nil
}

// Zgemm is the reference triple loop.
func (d *MockDriver) Zgemm(tA, tB blas.Transpose, m, n, k int,
	alpha complex128, a Buffer, lda int, b Buffer, ldb int,
	beta complex128, c Buffer, ldc int) error {
	ab, ok1 := a.(*mockBuffer)
	bb, ok2 := b.(*mockBuffer)
	cb, ok3 := c.(*mockBuffer)
	if !ok1 || !ok2 || !ok3 || ab.drv != d || bb.drv != d || cb.drv != d {
		return errForeignBuffer
	}
	if ab.data == nil || bb.data == nil || cb.data == nil {
		return ErrClosed
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum complex128
			for l := 0; l < k; l++ {
				sum += opAt(tA, ab.data, lda, i, l) * opAt(tB, bb.data, ldb, l, j)
			}
			idx := i*ldc + j
			if beta == 0 {
				cb.data[idx] = alpha * sum
			} else {
				cb.data[idx] = alpha*sum + beta*cb.data[idx]
			}
		}
	}
	return nil
}

// Close makes further allocations fail. Live buffers stay valid until their
// owners release them.
func (d *MockDriver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// opAt returns op(X)[i,j] for row-major X with leading dimension ld.
func opAt(t blas.Transpose, x []complex128, ld, i, j int) complex128 {
	switch t {
	case blas.Trans:
		return x[j*ld+i]
	case blas.ConjTrans:
		return cmplx.Conj(x[j*ld+i])
	default:
		return x[i*ld+j]
	}
}

type mockBuffer struct {
	drv  *MockDriver
	data []complex128
}

func (b *mockBuffer) Len() int { return len(b.data) }

func (b *mockBuffer) Upload(src []complex128) error {
	if b.data == nil {
		return ErrClosed
	}
	if len(src) > len(b.data) {
		return ErrDimensionMismatch
	}
	copy(b.data, src)
	return nil
}

func (b *mockBuffer) Download(dst []complex128) error {
	if b.data == nil {
		return ErrClosed
	}
	if len(dst) > len(b.data) {
		return ErrDimensionMismatch
	}
	copy(dst, b.data)
	return nil
}

func (b *mockBuffer) Release() error {
	if b.data == nil {
		return nil
	}
	b.data = nil
	b.drv.mu.Lock()
	b.drv.live--
	b.drv.mu.Unlock()
	return nil
}
