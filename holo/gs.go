// SPDX-License-Identifier: MIT
// gs.go - Gerchberg–Saxton.
//
// Alternates between the focal plane, where magnitudes are reset to |p|, and
// the array plane, where q is reduced to its phase.

package holo

import (
	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// DefaultRepeat is the iteration count of GS, GSPAT and SDP.
const DefaultRepeat = 100

// GS is Gerchberg–Saxton phase retrieval between the transducer plane and
// the foci. Each iteration imposes |p| at the foci and unit amplitude at the
// transducers; the drive returned is the last back-propagated field, so it
// carries the amplitudes needed to reconstruct the targets.
type GS struct {
	// Repeat is the exact number of iterations. Zero returns the phase of
	// the start point.
	Repeat int
	// Initial is an optional start drive of length N; only its phase is
	// used. Nil starts from Naive.
	Initial []complex128
}

// DefaultGS returns GS with Repeat = 100 and a Naive start.
func DefaultGS() GS { return GS{Repeat: DefaultRepeat} }

// Name returns "gs".
func (GS) Name() string { return NameGS }

// Validate checks Repeat ≥ 0.
func (s GS) Validate() error {
	if s.Repeat < 0 {
		return paramError(s.Name(), "repeat %d < 0", s.Repeat)
	}
	return nil
}

// Solve runs exactly s.Repeat iterations.
//
// Complexity: O(Repeat·M·N).
func (s GS) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}

	// Stage 1: start point
	q := make([]complex128, pr.n)
	if s.Initial != nil {
		if len(s.Initial) != pr.n {
			return nil, paramError(s.Name(), "len(Initial)=%d, N=%d", len(s.Initial), pr.n)
		}
		copy(q, s.Initial)
	} else {
		if q, err = pr.naive(ctx); err != nil {
			return nil, stepError(s.Name(), "initialize", err)
		}
	}
	ctx.Phase(q, q)

	// Stage 2: iterate
	c := make([]complex128, pr.m)
	xi := make([]complex128, pr.n)
	copy(xi, q)
	for it := 0; it < s.Repeat; it++ {
		if err := gsStep(ctx, pr, q, c, xi); err != nil {
			return nil, stepError(s.Name(), "iterate", err)
		}
	}
	return &Solution{Q: xi, Iterations: s.Repeat, Converged: true}, nil
}

// gsStep performs one iteration. On return xi holds Gᴴ(|p|·Gq/|Gq|) and q its
// phase.
func gsStep(ctx backend.Context, pr *problem, q, c, xi []complex128) error {
	if err := pr.forward(ctx, q, c); err != nil {
		return err
	}
	ctx.Phase(c, c)
	ctx.MulElem(c, c, pr.p)
	if err := pr.backward(ctx, c, xi); err != nil {
		return err
	}
	ctx.Phase(q, xi)
	return nil
}
