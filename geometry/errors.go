// SPDX-License-Identifier: MIT

package geometry

import "github.com/katalvlaran/sonora/internal/errcat"

// Sentinel errors. Every one of them matches errcat.ErrConfiguration (re-exported
// as holo.ErrConfiguration) under errors.Is.
var (
	// ErrEmptyGeometry is returned when a Geometry is built from zero devices.
	ErrEmptyGeometry = errcat.Configuration("geometry: no devices")

	// ErrEmptyDevice is returned when a Device has no transducers, or a nil
	// device is passed to New.
	ErrEmptyDevice = errcat.Configuration("geometry: device has no transducers")

	// ErrInvalidPosition signals a NaN or ±Inf coordinate.
	ErrInvalidPosition = errcat.Configuration("geometry: position is not finite")

	// ErrInvalidNormal signals a zero-length or non-finite emission normal.
	ErrInvalidNormal = errcat.Configuration("geometry: normal must be a finite non-zero vector")

	// ErrInvalidCycle signals a drive cycle of zero.
	ErrInvalidCycle = errcat.Configuration("geometry: cycle must be positive")
)
