// SPDX-License-Identifier: MIT
// device.go - Backend over a Driver.
//
// Purpose:
//   - Keep pinned matrices resident on the device and run Gemv/Gemm there.
//   - Run eigen, solves and element-wise work on the host.
//
// Notes:
//   - A context owns every buffer it allocates. Scratch buffers are released
//     after each product; whatever a failure leaves behind is released by Close.
//   - Gemv is a Gemm with one column.

package backend

import (
	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/internal/monitoring"
)

const bytesPerElement = 16

// Device runs the matrix products on a Driver and everything else on the
// host. A matrix passed to Pin is uploaded once and reused by every product
// of the context.
type Device struct {
	drv Driver
}

// NewDevice returns a device backend over drv.
func NewDevice(drv Driver) *Device {
	if drv == nil {
		panic("backend: NewDevice(nil driver)")
	}
	return &Device{drv: drv}
}

// Info returns the driver's description.
func (d *Device) Info() Info { return d.drv.Info() }

// Open returns a context that owns every buffer it allocates.
func (d *Device) Open() (Context, error) {
	info := d.drv.Info()
	monitoring.Logger().Debug("backend: open", "backend", info.Name, "device", info.Device)
	return &deviceContext{
		name:   info.Name,
		drv:    d.drv,
		pinned: make(map[*mat.CDense]Buffer),
		live:   make(map[Buffer]struct{}),
	}, nil
}

// Close releases the driver. Contexts opened earlier must be closed first.
func (d *Device) Close() error { return d.drv.Close() }

type deviceContext struct {
	name   string
	drv    Driver
	pinned map[*mat.CDense]Buffer
	live   map[Buffer]struct{}
	bytes  uint64
	closed bool
}

func (c *deviceContext) err(op string, err error) error { return opError(c.name, op, err) }

// alloc tracks the buffer so Close can release it on any path.
func (c *deviceContext) alloc(n int) (Buffer, error) {
	buf, err := c.drv.Alloc(n)
	if err != nil {
		return nil, err
	}
	c.live[buf] = struct{}{}
	size := uint64(n) * bytesPerElement
	c.bytes += size
	monitoring.Logger().Debug("backend: alloc",
		"backend", c.name,
		"size", humanize.IBytes(size),
		"resident", humanize.IBytes(c.bytes))
	return buf, nil
}

func (c *deviceContext) release(buf Buffer) error {
	if _, ok := c.live[buf]; !ok {
		return nil
	}
	delete(c.live, buf)
	c.bytes -= uint64(buf.Len()) * bytesPerElement
	return buf.Release()
}

// upload allocates and fills a buffer with the packed rows of a.
func (c *deviceContext) upload(a *mat.CDense) (Buffer, error) {
	r, cols := a.Dims()
	buf, err := c.alloc(r * cols)
	if err != nil {
		return nil, err
	}
	if err := buf.Upload(pack(a)); err != nil {
		return nil, err
	}
	return buf, nil
}

// operand returns the device copy of a and whether the caller owns it.
func (c *deviceContext) operand(a *mat.CDense) (Buffer, bool, error) {
	if buf, ok := c.pinned[a]; ok {
		return buf, false, nil
	}
	buf, err := c.upload(a)
	return buf, true, err
}

func (c *deviceContext) Pin(a *mat.CDense) error {
	if c.closed {
		return c.err("pin", ErrClosed)
	}
	if a == nil {
		return c.err("pin", ErrDimensionMismatch)
	}
	if _, ok := c.pinned[a]; ok {
		return nil
	}
	buf, err := c.upload(a)
	if err != nil {
		return c.err("pin", err)
	}
	c.pinned[a] = buf
	return nil
}

func (c *deviceContext) Gemv(t blas.Transpose, alpha complex128, a *mat.CDense, x []complex128, beta complex128, y []complex128) error {
	if c.closed {
		return c.err("gemv", ErrClosed)
	}
	if err := checkGemv(t, a, x, y); err != nil {
		return c.err("gemv", err)
	}
	r, k := opDims(t, a)
	xm := mat.NewCDense(k, 1, append([]complex128(nil), x...))
	ym := mat.NewCDense(r, 1, append([]complex128(nil), y...))
	if err := c.gemm(t, blas.NoTrans, alpha, a, xm, beta, ym); err != nil {
		return c.err("gemv", err)
	}
	copy(y, ym.RawCMatrix().Data)
	return nil
}

func (c *deviceContext) Gemm(tA, tB blas.Transpose, alpha complex128, a, b *mat.CDense, beta complex128, dst *mat.CDense) error {
	if c.closed {
		return c.err("gemm", ErrClosed)
	}
	if err := checkGemm(tA, tB, a, b, dst); err != nil {
		return c.err("gemm", err)
	}
	return c.err("gemm", c.gemm(tA, tB, alpha, a, b, beta, dst))
}

// gemm runs one product on the driver. Scratch buffers are released before
// returning; on failure the remaining ones are left to Close.
func (c *deviceContext) gemm(tA, tB blas.Transpose, alpha complex128, a, b *mat.CDense, beta complex128, dst *mat.CDense) error {
	m, k := opDims(tA, a)
	_, n := opDims(tB, b)
	_, lda := a.Dims()
	_, ldb := b.Dims()

	ab, ownA, err := c.operand(a)
	if err != nil {
		return err
	}
	bb, ownB, err := c.operand(b)
	if err != nil {
		return err
	}
	cb, err := c.alloc(m * n)
	if err != nil {
		return err
	}
	if beta != 0 {
		if err := cb.Upload(pack(dst)); err != nil {
			return err
		}
	}

	if err := c.drv.Zgemm(tA, tB, m, n, k, alpha, ab, lda, bb, ldb, beta, cb, n); err != nil {
		return err
	}

	out := make([]complex128, m*n)
	if err := cb.Download(out); err != nil {
		return err
	}
	unpack(dst, out)

	_ = c.release(cb)
	if ownA {
		_ = c.release(ab)
	}
	if ownB {
		_ = c.release(bb)
	}
	return nil
}

func (c *deviceContext) MaxEigen(a *mat.CDense) (float64, []complex128, error) {
	if c.closed {
		return 0, nil, c.err("eigen", ErrClosed)
	}
	v, u, err := hermitianMaxEigen(a)
	if err != nil {
		return 0, nil, c.err("eigen", err)
	}
	return v, u, nil
}

func (c *deviceContext) Solve(a, b, dst *mat.CDense) error {
	if c.closed {
		return c.err("solve", ErrClosed)
	}
	return c.err("solve", complexSolve(a, b, dst))
}

func (c *deviceContext) SolveSym(a *mat.SymDense, b, dst []float64) error {
	if c.closed {
		return c.err("solve_sym", ErrClosed)
	}
	return c.err("solve_sym", symSolve(a, b, dst))
}

func (c *deviceContext) Phase(dst, src []complex128)               { phase(dst, src) }
func (c *deviceContext) Magnitude(dst []float64, src []complex128) { magnitude(dst, src) }
func (c *deviceContext) MulElem(dst, a, b []complex128)            { mulElem(dst, a, b) }

// Close releases pinned and leftover scratch buffers. The first release
// error is returned; the rest are still attempted.
func (c *deviceContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var first error
	for buf := range c.live {
		if err := buf.Release(); err != nil && first == nil {
			first = err
		}
	}
	monitoring.Logger().Debug("backend: close",
		"backend", c.name,
		"buffers", len(c.live),
		"freed", humanize.IBytes(c.bytes))
	c.live = nil
	c.pinned = nil
	c.bytes = 0
	return c.err("close", first)
}

// pack returns the rows of a as one contiguous slice.
func pack(a *mat.CDense) []complex128 {
	raw := a.RawCMatrix()
	if raw.Stride == raw.Cols {
		return raw.Data[:raw.Rows*raw.Cols]
	}
	out := make([]complex128, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		out = append(out, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return out
}

// unpack writes contiguous rows into dst.
func unpack(dst *mat.CDense, src []complex128) {
	raw := dst.RawCMatrix()
	for i := 0; i < raw.Rows; i++ {
		copy(raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols], src[i*raw.Cols:(i+1)*raw.Cols])
	}
}
