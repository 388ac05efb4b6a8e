// SPDX-License-Identifier: MIT

// Package drive quantizes continuous (phase, amplitude) pairs into the integer
// (phase, duty) representation a transducer is driven with.
//
// A transducer with drive cycle C accepts a phase in [0, C) and a duty in
// [0, C/2]. Its fundamental output amplitude is proportional to
// sin(π·duty/C), so amplitudes are mapped through arcsine:
//
//	phase = round(φ/2π · C) mod C
//	duty  = round(asin(a)/π · C)
//
// Decode inverts both mappings; a round trip reproduces the input within one
// quantization step.
package drive

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sonora/internal/errcat"
)

// ErrInvalidCycle is returned for a cycle that is odd or smaller than 2.
var ErrInvalidCycle = errcat.Configuration("drive: cycle must be even and >= 2")

const panicAmplitudeRange = "drive: Encode: amplitude outside [0,1]"

// Drive is the integer drive of one transducer.
type Drive struct {
	Phase uint16
	Duty  uint16
}

// String renders d as "phase/duty".
func (d Drive) String() string { return fmt.Sprintf("%d/%d", d.Phase, d.Duty) }

// Encoder converts for one drive cycle.
type Encoder struct {
	cycle uint16
}

// NewEncoder returns an encoder for cycle.
func NewEncoder(cycle uint16) (Encoder, error) {
	if cycle < 2 || cycle%2 != 0 {
		return Encoder{}, fmt.Errorf("%w: got %d", ErrInvalidCycle, cycle)
	}
	return Encoder{cycle: cycle}, nil
}

// Cycle returns the drive cycle.
func (e Encoder) Cycle() uint16 { return e.cycle }

// MaxDuty returns cycle/2, the duty of full amplitude.
func (e Encoder) MaxDuty() uint16 { return e.cycle / 2 }

// PhaseStep returns the phase quantum 2π/cycle in radians.
func (e Encoder) PhaseStep() float64 { return 2 * math.Pi / float64(e.cycle) }

// Encode quantizes phase (radians, any range) and amplitude. The amplitude
// must lie in [0,1]; anything else is a broken constraint and panics.
func (e Encoder) Encode(phase, amp float64) Drive {
	if !(amp >= 0 && amp <= 1) {
		panic(panicAmplitudeRange)
	}
	c := float64(e.cycle)

	p := math.Mod(phase, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	steps := int(math.Round(p/(2*math.Pi)*c)) % int(e.cycle)

	duty := math.Round(math.Asin(amp) / math.Pi * c)
	if duty > float64(e.MaxDuty()) {
		duty = float64(e.MaxDuty())
	}
	return Drive{Phase: uint16(steps), Duty: uint16(duty)}
}

// Decode returns the phase in [0, 2π) and the normalized amplitude of d.
func (e Encoder) Decode(d Drive) (phase, amp float64) {
	c := float64(e.cycle)
	phase = float64(d.Phase%e.cycle) * 2 * math.Pi / c
	duty := d.Duty
	if duty > e.MaxDuty() {
		duty = e.MaxDuty()
	}
	amp = math.Sin(float64(duty) * math.Pi / c)
	return phase, amp
}
