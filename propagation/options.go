// SPDX-License-Identifier: MIT

package propagation

import "math"

// T4010A1Amplitude is the on-axis pressure amplitude of one T4010A1 transducer
// at full duty, expressed as pressure × distance (Pa·mm).
const T4010A1Amplitude = 275.574246625 * 200.0

const panicSourceAmplitudeInvalid = "propagation: WithSourceAmplitude: a0 must be finite and > 0"

// Option configures Build.
type Option func(*options)

type options struct {
	sourceAmplitude float64
	workers         int
}

func defaultOptions() options {
	return options{sourceAmplitude: T4010A1Amplitude}
}

// WithSourceAmplitude overrides the per-transducer source amplitude A0 (Pa·mm).
func WithSourceAmplitude(a0 float64) Option {
	if math.IsNaN(a0) || math.IsInf(a0, 0) || a0 <= 0 {
		panic(panicSourceAmplitudeInvalid)
	}
	return func(o *options) { o.sourceAmplitude = a0 }
}

// WithWorkers bounds the number of goroutines computing rows. Values < 1 use
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}
