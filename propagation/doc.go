// SPDX-License-Identifier: MIT

// Package propagation builds the complex transfer matrix from transducers to
// foci under a spherical-wave model.
//
//	G[m,n] = A0 · exp(-α·d) · exp(i·kₙ·d) / d,   d = |focusₘ − transducerₙ|
//
// A0 is the source amplitude of a single transducer driven at full duty
// (Pa·mm), α the geometry attenuation and kₙ the transducer wavenumber. With
// this scaling G·q is the focal pressure in pascals for a drive q with
// |qₙ| ≤ 1.
//
// The matrix is rebuilt whenever the geometry or the focus set changes and is
// immutable otherwise; it can be shared by concurrent solves.
package propagation
