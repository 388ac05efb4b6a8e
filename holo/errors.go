// SPDX-License-Identifier: MIT

package holo

import (
	"fmt"

	"github.com/katalvlaran/sonora/internal/errcat"
)

// Error categories shared by every sonora package.
var (
	ErrConfiguration = errcat.ErrConfiguration
	ErrBackend       = errcat.ErrBackend
)

var (
	// ErrInvalidParameter is returned by Validate and by Solve for a
	// parameter that does not fit the problem (e.g. Initial of wrong length).
	ErrInvalidParameter = errcat.Configuration("holo: invalid solver parameter")

	// ErrNilInput is returned when a required argument is nil.
	ErrNilInput = errcat.Configuration("holo: nil argument")

	// ErrUnknownSolver is returned by NewSolver for an unknown name.
	ErrUnknownSolver = errcat.Configuration("holo: unknown solver")
)

// stepError attributes a backend failure to a solver step.
func stepError(solver, step string, err error) error {
	return errcat.Wrapf(err, "holo: %s: %s", solver, step)
}

func paramError(solver, format string, args ...any) error {
	return errcat.Wrapf(ErrInvalidParameter, "holo: %s: %s", solver, fmt.Sprintf(format, args...))
}
