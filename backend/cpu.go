// SPDX-License-Identifier: MIT
// cpu.go - host backend over gonum's complex BLAS.
//
// Purpose:
//   - Run every Context primitive in process: products on cblas128, eigen and
//     solves on gonum/mat via the shared host kernels in hostops.go.
//   - Report the SIMD features the host exposes through Info.
//
// Notes:
//   - Contexts carry no state beyond a closed flag; Pin is a validation no-op.

package backend

import (
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
)

// CPUName is the registry name of the CPU backend.
const CPUName = "cpu"

// CPU runs every primitive on the host with gonum.
type CPU struct{}

// NewCPU returns the CPU backend. It is always available.
func NewCPU() *CPU { return &CPU{} }

// Info reports the host architecture and the SIMD features gonum may use.
func (*CPU) Info() Info {
	return Info{
		Name:        CPUName,
		Device:      runtime.GOARCH,
		Description: "gonum cblas128 (" + cpuFeatures() + ")",
	}
}

// Open returns a new CPU context.
func (*CPU) Open() (Context, error) {
	return &cpuContext{}, nil
}

// Close is a no-op; the CPU backend holds nothing between solves.
func (*CPU) Close() error { return nil }

func cpuFeatures() string {
	var feats []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasAVX2 {
			feats = append(feats, "avx2")
		}
		if cpu.X86.HasFMA {
			feats = append(feats, "fma")
		}
		if cpu.X86.HasSSE42 {
			feats = append(feats, "sse4.2")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			feats = append(feats, "asimd")
		}
		if cpu.ARM64.HasFPHP {
			feats = append(feats, "fphp")
		}
	}
	if len(feats) == 0 {
		return "generic"
	}
	return strings.Join(feats, ",")
}

type cpuContext struct {
	closed bool
}

func (c *cpuContext) err(op string, err error) error { return opError(CPUName, op, err) }

func (c *cpuContext) Pin(a *mat.CDense) error {
	if c.closed {
		return c.err("pin", ErrClosed)
	}
	if a == nil {
		return c.err("pin", ErrDimensionMismatch)
	}
	return nil
}

func (c *cpuContext) Gemv(t blas.Transpose, alpha complex128, a *mat.CDense, x []complex128, beta complex128, y []complex128) error {
	if c.closed {
		return c.err("gemv", ErrClosed)
	}
	if err := checkGemv(t, a, x, y); err != nil {
		return c.err("gemv", err)
	}
	cblas128.Gemv(t, alpha, a.RawCMatrix(),
		cblas128.Vector{N: len(x), Inc: 1, Data: x},
		beta,
		cblas128.Vector{N: len(y), Inc: 1, Data: y})
	return nil
}

func (c *cpuContext) Gemm(tA, tB blas.Transpose, alpha complex128, a, b *mat.CDense, beta complex128, dst *mat.CDense) error {
	if c.closed {
		return c.err("gemm", ErrClosed)
	}
	if err := checkGemm(tA, tB, a, b, dst); err != nil {
		return c.err("gemm", err)
	}
	cblas128.Gemm(tA, tB, alpha, a.RawCMatrix(), b.RawCMatrix(), beta, dst.RawCMatrix())
	return nil
}

func (c *cpuContext) MaxEigen(a *mat.CDense) (float64, []complex128, error) {
	if c.closed {
		return 0, nil, c.err("eigen", ErrClosed)
	}
	v, u, err := hermitianMaxEigen(a)
	if err != nil {
		return 0, nil, c.err("eigen", err)
	}
	return v, u, nil
}

func (c *cpuContext) Solve(a, b, dst *mat.CDense) error {
	if c.closed {
		return c.err("solve", ErrClosed)
	}
	return c.err("solve", complexSolve(a, b, dst))
}

func (c *cpuContext) SolveSym(a *mat.SymDense, b, dst []float64) error {
	if c.closed {
		return c.err("solve_sym", ErrClosed)
	}
	return c.err("solve_sym", symSolve(a, b, dst))
}

func (c *cpuContext) Phase(dst, src []complex128)               { phase(dst, src) }
func (c *cpuContext) Magnitude(dst []float64, src []complex128) { magnitude(dst, src) }
func (c *cpuContext) MulElem(dst, a, b []complex128)            { mulElem(dst, a, b) }

func (c *cpuContext) Close() error {
	c.closed = true
	return nil
}
