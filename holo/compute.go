// SPDX-License-Identifier: MIT
// compute.go - end-to-end pipeline: G, solve, constrain, encode.
//
// Notes:
//   - The backend context is closed on every path; a close failure replaces
//     an otherwise successful result.

package holo

import (
	"fmt"
	"math/cmplx"
	"time"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/constraint"
	"github.com/katalvlaran/sonora/drive"
	"github.com/katalvlaran/sonora/geometry"
	"github.com/katalvlaran/sonora/internal/monitoring"
	"github.com/katalvlaran/sonora/propagation"
)

// Result is the output of Compute.
type Result struct {
	// Raw is the solver drive q.
	Raw []complex128
	// Amplitudes are the constrained amplitudes in [0,1].
	Amplitudes []float64
	// Drives holds one encoded drive per transducer, in geometry order.
	Drives []drive.Drive
	// Iterations and Converged are copied from the solver.
	Iterations int
	Converged  bool
}

// ComputeOption configures Compute.
type ComputeOption func(*computeOptions)

type computeOptions struct {
	propagation []propagation.Option
	cycle       uint16
}

// WithPropagation forwards options to propagation.Build.
func WithPropagation(opts ...propagation.Option) ComputeOption {
	return func(o *computeOptions) { o.propagation = append(o.propagation, opts...) }
}

// WithCycle encodes every transducer with cycle instead of its own.
// Panics if cycle is odd or smaller than 2.
func WithCycle(cycle uint16) ComputeOption {
	if _, err := drive.NewEncoder(cycle); err != nil {
		panic(err.Error())
	}
	return func(o *computeOptions) { o.cycle = cycle }
}

// Compute runs the full pipeline for one focus set:
//
//	Stage 1: validate solver, backend and constraint;
//	Stage 2: build G;
//	Stage 3: open a backend context (closed on every path) and solve;
//	Stage 4: constrain |q| and encode one Drive per transducer.
func Compute(
	geo *geometry.Geometry,
	foci []propagation.Focus,
	solver Solver,
	b backend.Backend,
	c constraint.Constraint,
	opts ...ComputeOption,
) (res *Result, err error) {
	// Stage 1: validate
	if solver == nil || b == nil {
		return nil, fmt.Errorf("holo: Compute: %w", ErrNilInput)
	}
	if v, ok := solver.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := computeOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	// Stage 2: transfer matrix
	tm, err := propagation.Build(geo, foci, o.propagation...)
	if err != nil {
		return nil, err
	}

	// Stage 3: solve
	ctx, err := b.Open()
	if err != nil {
		return nil, stepError(solver.Name(), "open", err)
	}
	defer func() {
		if cerr := ctx.Close(); cerr != nil && err == nil {
			res, err = nil, stepError(solver.Name(), "close", cerr)
		}
	}()

	start := time.Now()
	sol, err := solver.Solve(tm, ctx)
	if err != nil {
		return nil, err
	}
	m, n := tm.Dims()
	monitoring.Logger().Debug("holo: solve",
		"solver", solver.Name(),
		"backend", b.Info().Name,
		"foci", m,
		"transducers", n,
		"iterations", sol.Iterations,
		"converged", sol.Converged,
		"elapsed", time.Since(start))

	// Stage 4: constrain and encode
	mags := make([]float64, n)
	ctx.Magnitude(mags, sol.Q)
	amps := c.Apply(mags)

	encoders, err := encodersFor(geo, o.cycle)
	if err != nil {
		return nil, err
	}
	drives := make([]drive.Drive, n)
	for i, q := range sol.Q {
		drives[i] = encoders[i].Encode(cmplx.Phase(q), amps[i])
	}

	return &Result{
		Raw:        sol.Q,
		Amplitudes: amps,
		Drives:     drives,
		Iterations: sol.Iterations,
		Converged:  sol.Converged,
	}, nil
}

// Field decodes drives and returns the pressures they produce at the foci of
// tm. Transducers are decoded with their own cycle.
func Field(tm *propagation.TransferMatrix, drives []drive.Drive, geo *geometry.Geometry) ([]complex128, error) {
	if tm == nil || geo == nil {
		return nil, fmt.Errorf("holo: Field: %w", ErrNilInput)
	}
	encoders, err := encodersFor(geo, 0)
	if err != nil {
		return nil, err
	}
	if len(drives) != len(encoders) {
		return nil, fmt.Errorf("holo: Field: len(drives)=%d, N=%d: %w", len(drives), len(encoders), propagation.ErrDimensionMismatch)
	}
	q := make([]complex128, len(drives))
	for i, d := range drives {
		phase, amp := encoders[i].Decode(d)
		q[i] = cmplx.Rect(amp, phase)
	}
	return tm.Field(q)
}

// encodersFor returns one encoder per transducer; cycle 0 keeps each
// transducer's own cycle.
func encodersFor(geo *geometry.Geometry, cycle uint16) ([]drive.Encoder, error) {
	trs := geo.Transducers()
	out := make([]drive.Encoder, len(trs))
	cache := make(map[uint16]drive.Encoder)
	for i, tr := range trs {
		c := tr.Cycle
		if cycle != 0 {
			c = cycle
		}
		enc, ok := cache[c]
		if !ok {
			var err error
			if enc, err = drive.NewEncoder(c); err != nil {
				return nil, fmt.Errorf("holo: transducer %d: %w", i, err)
			}
			cache[c] = enc
		}
		out[i] = enc
	}
	return out, nil
}
