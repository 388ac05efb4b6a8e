// SPDX-License-Identifier: MIT

package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Identity is the rotation that leaves a device in its native orientation.
// The zero r3.Rotation is not a rotation; use Identity instead.
var Identity = r3.Rotation{Real: 1}

// Transducer is a single emitter. Pos and Normal are in the global frame.
type Transducer struct {
	// Index is the global index in [0, N), assigned by New.
	Index int
	// Local is the index inside the owning device.
	Local int
	// Pos is the emitter center in mm.
	Pos r3.Vec
	// Normal is the unit emission direction.
	Normal r3.Vec
	// Cycle is the drive period in FPGA clock ticks.
	Cycle uint16
}

// Frequency returns the carrier frequency in Hz.
func (t Transducer) Frequency() float64 {
	return FPGAClock / float64(t.Cycle)
}

// Wavelength returns the acoustic wavelength in mm for sound speed c (mm/s).
func (t Transducer) Wavelength(c float64) float64 {
	return c / t.Frequency()
}

// Wavenumber returns 2π/λ in rad/mm for sound speed c (mm/s).
func (t Transducer) Wavenumber(c float64) float64 {
	return 2 * math.Pi / t.Wavelength(c)
}

// Device is an ordered group of transducers sharing a mounting frame.
type Device struct {
	transducers []Transducer
}

// NumTransducers returns the number of transducers in d.
func (d *Device) NumTransducers() int { return len(d.transducers) }

// Transducers returns a copy of the device's transducers in local order.
func (d *Device) Transducers() []Transducer {
	out := make([]Transducer, len(d.transducers))
	copy(out, d.transducers)
	return out
}

// Center returns the centroid of the device's transducer positions.
func (d *Device) Center() r3.Vec {
	var c r3.Vec
	for _, tr := range d.transducers {
		c = r3.Add(c, tr.Pos)
	}
	return r3.Scale(1/float64(len(d.transducers)), c)
}

// Geometry is the immutable, globally indexed union of devices.
type Geometry struct {
	devices     []*Device
	transducers []Transducer
	offsets     []int
	soundSpeed  float64
	attenuation float64
}

// NumDevices returns the number of devices.
func (g *Geometry) NumDevices() int { return len(g.devices) }

// NumTransducers returns N, the size of the global index space.
func (g *Geometry) NumTransducers() int { return len(g.transducers) }

// Transducer returns the transducer with global index i. It panics if i is
// out of range, like a slice index would.
func (g *Geometry) Transducer(i int) Transducer { return g.transducers[i] }

// Transducers returns a copy of every transducer in global index order.
func (g *Geometry) Transducers() []Transducer {
	out := make([]Transducer, len(g.transducers))
	copy(out, g.transducers)
	return out
}

// Device returns the i-th device.
func (g *Geometry) Device(i int) *Device { return g.devices[i] }

// DeviceOffset returns the global index of the first transducer of device i.
func (g *Geometry) DeviceOffset(i int) int { return g.offsets[i] }

// SoundSpeed returns the configured speed of sound in mm/s.
func (g *Geometry) SoundSpeed() float64 { return g.soundSpeed }

// Attenuation returns the attenuation coefficient α in 1/mm.
func (g *Geometry) Attenuation() float64 { return g.attenuation }

// Wavenumber returns the wavenumber of transducer i in rad/mm.
func (g *Geometry) Wavenumber(i int) float64 {
	return g.transducers[i].Wavenumber(g.soundSpeed)
}

// Center returns the centroid of all transducer positions.
func (g *Geometry) Center() r3.Vec {
	var c r3.Vec
	for _, tr := range g.transducers {
		c = r3.Add(c, tr.Pos)
	}
	return r3.Scale(1/float64(len(g.transducers)), c)
}
