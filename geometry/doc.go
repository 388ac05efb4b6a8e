// SPDX-License-Identifier: MIT

// Package geometry describes a phased array of ultrasonic transducers.
//
// A Geometry is an ordered, non-empty collection of Devices; each Device is an
// ordered, non-empty collection of Transducers. Construction assigns every
// transducer a global index in [0, N); that index space is used by every matrix
// and vector in the solver engine and never changes for the lifetime of the
// Geometry.
//
// Units are millimetres and seconds. The acoustic wavelength of a transducer
// follows from the configured sound speed and the transducer's drive cycle:
//
//	frequency  = FPGAClock / cycle          (cycle 4096 → 40 kHz)
//	wavelength = soundSpeed / frequency
//	wavenumber = 2π / wavelength
//
// Usage:
//
//	dev, _ := geometry.NewAUTD3(r3.Vec{}, geometry.Identity)
//	geo, err := geometry.New([]*geometry.Device{dev}, geometry.WithSoundSpeed(346e3))
//
// A Geometry is immutable and safe for concurrent use.
package geometry
