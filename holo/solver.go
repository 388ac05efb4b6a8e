// SPDX-License-Identifier: MIT

package holo

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// Solver names as used in session files.
const (
	NameNaive     = "naive"
	NameGS        = "gs"
	NameGSPAT     = "gspat"
	NameSDP       = "sdp"
	NameEVP       = "evp"
	NameLM        = "lm"
	NameGreedy    = "greedy"
	NameLSSGreedy = "lssgreedy"
)

// Solver turns a transfer matrix into a raw complex drive.
type Solver interface {
	Name() string
	Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error)
}

// Validator is implemented by solvers with checkable parameters.
type Validator interface {
	Validate() error
}

// Solution is the raw drive of one solve.
type Solution struct {
	// Q holds one complex drive per transducer, in geometry order.
	Q []complex128
	// Iterations is the number of iterations performed.
	Iterations int
	// Converged reports whether the solver met its stopping rule. Solvers with
	// a fixed schedule report true once the schedule completes.
	Converged bool
}

// NewSolver returns the default-parameter solver registered under name.
func NewSolver(name string) (Solver, error) {
	switch name {
	case NameNaive:
		return Naive{}, nil
	case NameGS:
		return DefaultGS(), nil
	case NameGSPAT:
		return DefaultGSPAT(), nil
	case NameSDP:
		return DefaultSDP(), nil
	case NameEVP:
		return DefaultEVP(), nil
	case NameLM:
		return DefaultLM(), nil
	case NameGreedy:
		return DefaultGreedy(), nil
	case NameLSSGreedy:
		return DefaultLSSGreedy(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
	}
}

// problem is the per-solve view every solver starts from.
type problem struct {
	g    *mat.CDense
	m, n int
	// p is the target vector (real, non-negative) and amps its magnitudes.
	p    []complex128
	amps []float64
}

// setup validates the inputs and pins G on the context.
func setup(solver string, tm *propagation.TransferMatrix, ctx backend.Context) (*problem, error) {
	if tm == nil || ctx == nil {
		return nil, fmt.Errorf("holo: %s: %w", solver, ErrNilInput)
	}
	g := tm.Matrix()
	if err := ctx.Pin(g); err != nil {
		return nil, stepError(solver, "pin", err)
	}
	m, n := tm.Dims()
	return &problem{
		g:    g,
		m:    m,
		n:    n,
		p:    tm.Targets(),
		amps: tm.Amplitudes(),
	}, nil
}

// forward stores G·q into dst.
func (pr *problem) forward(ctx backend.Context, q, dst []complex128) error {
	return ctx.Gemv(backend.NoTrans, 1, pr.g, q, 0, dst)
}

// backward stores Gᴴ·c into dst.
func (pr *problem) backward(ctx backend.Context, c, dst []complex128) error {
	return ctx.Gemv(backend.ConjTrans, 1, pr.g, c, 0, dst)
}

// naive returns Gᴴp.
func (pr *problem) naive(ctx backend.Context) ([]complex128, error) {
	q := make([]complex128, pr.n)
	if err := pr.backward(ctx, pr.p, q); err != nil {
		return nil, err
	}
	return q, nil
}

// identity returns the n×n identity.
func identity(n int) *mat.CDense {
	id := mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		id.Set(i, i, 1)
	}
	return id
}
