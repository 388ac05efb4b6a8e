// SPDX-License-Identifier: MIT

package propagation

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/sonora/geometry"
)

// TransferMatrix is G ∈ ℂ^{M×N} together with the focus set it was built for.
type TransferMatrix struct {
	g       *mat.CDense
	foci    []Focus
	targets []complex128
}

// Build computes the transfer matrix for geo and foci.
//
// Stage 1 validates every focus and every focus/transducer distance, so a
// configuration error is reported before any allocation of G. Stage 2 fills
// the rows concurrently; each row is written by exactly one goroutine.
func Build(geo *geometry.Geometry, foci []Focus, opts ...Option) (*TransferMatrix, error) {
	// Stage 1: validate
	if geo == nil {
		return nil, ErrNilGeometry
	}
	if len(foci) == 0 {
		return nil, ErrNoFoci
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	trs := geo.Transducers()
	for m, f := range foci {
		if !f.valid() {
			return nil, fmt.Errorf("Build: focus %d: %w", m, ErrInvalidFocus)
		}
		for _, tr := range trs {
			if r3.Norm(r3.Sub(f.Pos, tr.Pos)) == 0 {
				return nil, fmt.Errorf("Build: focus %d at transducer %d: %w", m, tr.Index, ErrSingularDistance)
			}
		}
	}

	// Stage 2: fill rows
	M, N := len(foci), len(trs)
	data := make([]complex128, M*N)
	wavenum := make([]float64, N)
	for n := range trs {
		wavenum[n] = geo.Wavenumber(n)
	}
	alpha := geo.Attenuation()
	a0 := o.sourceAmplitude

	workers := o.workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	var eg errgroup.Group
	eg.SetLimit(workers)
	for m := range foci {
		eg.Go(func() error {
			row := data[m*N : (m+1)*N]
			for n, tr := range trs {
				row[n] = transfer(foci[m].Pos, tr.Pos, wavenum[n], alpha, a0)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tm := &TransferMatrix{
		g:       mat.NewCDense(M, N, data),
		foci:    make([]Focus, M),
		targets: make([]complex128, M),
	}
	copy(tm.foci, foci)
	for m, f := range foci {
		tm.targets[m] = complex(float64(f.Amp), 0)
	}
	return tm, nil
}

// transfer is a single entry of G.
func transfer(focus, source r3.Vec, k, alpha, a0 float64) complex128 {
	d := r3.Norm(r3.Sub(focus, source))
	return complex(a0*math.Exp(-alpha*d)/d, 0) * cmplx.Exp(complex(0, k*d))
}

// Dims returns (M, N).
func (t *TransferMatrix) Dims() (m, n int) { return t.g.Dims() }

// Matrix returns G. The matrix is shared, not copied: callers must treat it as
// read-only.
func (t *TransferMatrix) Matrix() *mat.CDense { return t.g }

// At returns G[m,n].
func (t *TransferMatrix) At(m, n int) complex128 { return t.g.At(m, n) }

// Foci returns a copy of the focus sequence.
func (t *TransferMatrix) Foci() []Focus {
	out := make([]Focus, len(t.foci))
	copy(out, t.foci)
	return out
}

// Targets returns a copy of the target vector p (pascals, zero phase).
func (t *TransferMatrix) Targets() []complex128 {
	out := make([]complex128, len(t.targets))
	copy(out, t.targets)
	return out
}

// Amplitudes returns |p| as a real vector.
func (t *TransferMatrix) Amplitudes() []float64 {
	out := make([]float64, len(t.targets))
	for i, v := range t.targets {
		out[i] = real(v)
	}
	return out
}

// Field returns the synthesized focal pressures G·q.
func (t *TransferMatrix) Field(q []complex128) ([]complex128, error) {
	M, N := t.g.Dims()
	if len(q) != N {
		return nil, fmt.Errorf("Field: len(q)=%d, N=%d: %w", len(q), N, ErrDimensionMismatch)
	}
	out := make([]complex128, M)
	cblas128.Gemv(blas.NoTrans, 1, t.g.RawCMatrix(),
		cblas128.Vector{N: N, Inc: 1, Data: q}, 0,
		cblas128.Vector{N: M, Inc: 1, Data: out})
	return out, nil
}
