// SPDX-License-Identifier: MIT

package geometry

import "math"

// Physical defaults.
const (
	// DefaultSoundSpeed is the speed of sound in air at ~15 °C, in mm/s.
	DefaultSoundSpeed = 340e3

	// DefaultAttenuation is the amplitude attenuation coefficient α in 1/mm;
	// propagation scales pressure by exp(-α·d).
	DefaultAttenuation = 0.0

	// FPGAClock is the transducer drive clock in Hz. A transducer with cycle c
	// emits at FPGAClock/c.
	FPGAClock = 163.84e6

	// DefaultCycle is the drive cycle giving a 40 kHz carrier.
	DefaultCycle uint16 = 4096
)

const (
	panicSoundSpeedInvalid  = "geometry: WithSoundSpeed: speed must be finite and > 0"
	panicAttenuationInvalid = "geometry: WithAttenuation: alpha must be finite and >= 0"
)

// Option configures a Geometry. Constructors panic only on nonsensical values.
type Option func(*options)

type options struct {
	soundSpeed  float64
	attenuation float64
}

func defaultOptions() options {
	return options{
		soundSpeed:  DefaultSoundSpeed,
		attenuation: DefaultAttenuation,
	}
}

// WithSoundSpeed sets the speed of sound in mm/s.
func WithSoundSpeed(c float64) Option {
	if math.IsNaN(c) || math.IsInf(c, 0) || c <= 0 {
		panic(panicSoundSpeedInvalid)
	}
	return func(o *options) { o.soundSpeed = c }
}

// WithAttenuation sets the attenuation coefficient α in 1/mm.
func WithAttenuation(alpha float64) Option {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) || alpha < 0 {
		panic(panicAttenuationInvalid)
	}
	return func(o *options) { o.attenuation = alpha }
}
