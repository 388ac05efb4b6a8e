// SPDX-License-Identifier: MIT

package propagation

import "github.com/katalvlaran/sonora/internal/errcat"

// Sentinel errors; all match errcat.ErrConfiguration.
var (
	// ErrNilGeometry is returned when Build receives a nil geometry.
	ErrNilGeometry = errcat.Configuration("propagation: geometry is nil")

	// ErrNoFoci is returned for an empty focus sequence.
	ErrNoFoci = errcat.Configuration("propagation: focus set is empty")

	// ErrSingularDistance is returned when a focus coincides with a transducer.
	ErrSingularDistance = errcat.Configuration("propagation: focus coincides with a transducer")

	// ErrInvalidFocus signals a non-finite position or a negative/non-finite amplitude.
	ErrInvalidFocus = errcat.Configuration("propagation: invalid focus")

	// ErrDimensionMismatch is returned when a drive vector length differs from N.
	ErrDimensionMismatch = errcat.Configuration("propagation: drive length does not match transducer count")
)
