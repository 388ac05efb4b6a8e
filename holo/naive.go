// SPDX-License-Identifier: MIT

package holo

import (
	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/propagation"
)

// Naive back-propagates the targets: q = Gᴴp. Every focus contributes a
// phase-matched wave weighted by its target pressure.
type Naive struct{}

// Name returns "naive".
func (Naive) Name() string { return NameNaive }

// Validate always succeeds.
func (Naive) Validate() error { return nil }

// Solve computes q = Gᴴp.
//
// Complexity: O(M·N).
func (s Naive) Solve(tm *propagation.TransferMatrix, ctx backend.Context) (*Solution, error) {
	pr, err := setup(s.Name(), tm, ctx)
	if err != nil {
		return nil, err
	}
	q, err := pr.naive(ctx)
	if err != nil {
		return nil, stepError(s.Name(), "backpropagate", err)
	}
	return &Solution{Q: q, Iterations: 0, Converged: true}, nil
}
