// SPDX-License-Identifier: MIT

package propagation

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReferencePressure is the 0 dB SPL reference in pascals.
const ReferencePressure = 20e-6

// Amplitude is a target sound pressure amplitude in pascals.
type Amplitude float64

// Pascal returns an Amplitude of v pascals.
func Pascal(v float64) Amplitude { return Amplitude(v) }

// SPL converts a sound pressure level in dB to an Amplitude:
// pa = 20e-6 · 10^(spl/20).
func SPL(db float64) Amplitude {
	return Amplitude(ReferencePressure * math.Pow(10, db/20))
}

// Pascal returns the amplitude in pascals.
func (a Amplitude) Pascal() float64 { return float64(a) }

// SPL returns the amplitude as a sound pressure level in dB. Zero pressure
// maps to -Inf.
func (a Amplitude) SPL() float64 {
	return 20 * math.Log10(float64(a)/ReferencePressure)
}

// Focus is a target point with a desired pressure amplitude. The target phase
// is zero; solvers are free to choose the focal phase.
type Focus struct {
	Pos r3.Vec
	Amp Amplitude
}

func (f Focus) valid() bool {
	a := float64(f.Amp)
	for _, c := range [...]float64{f.Pos.X, f.Pos.Y, f.Pos.Z, a} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return a >= 0
}
