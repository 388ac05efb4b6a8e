// SPDX-License-Identifier: MIT

package geometry

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AUTD3 layout constants (mm).
const (
	// AUTD3Pitch is the spacing between neighbouring transducers.
	AUTD3Pitch = 10.16
	// AUTD3NumX is the number of columns in the grid.
	AUTD3NumX = 18
	// AUTD3NumY is the number of rows in the grid.
	AUTD3NumY = 14
	// AUTD3NumTransducers is the number of populated grid sites.
	AUTD3NumTransducers = AUTD3NumX*AUTD3NumY - 3
)

// autd3Missing reports the three unpopulated sites of the AUTD3 grid
// (screw holes).
func autd3Missing(x, y int) bool {
	return y == 1 && (x == 1 || x == 2 || x == 16)
}

// NewAUTD3 builds the standard 249-transducer device with its first transducer
// at origin, rotated by rot. Transducers are ordered row-major (x fastest).
func NewAUTD3(origin r3.Vec, rot r3.Rotation) (*Device, error) {
	if !finite(origin) {
		return nil, fmt.Errorf("NewAUTD3: %w", ErrInvalidPosition)
	}
	normal := rot.Rotate(r3.Vec{Z: 1})
	trs := make([]Transducer, 0, AUTD3NumTransducers)
	for y := 0; y < AUTD3NumY; y++ {
		for x := 0; x < AUTD3NumX; x++ {
			if autd3Missing(x, y) {
				continue
			}
			local := r3.Vec{X: float64(x) * AUTD3Pitch, Y: float64(y) * AUTD3Pitch}
			trs = append(trs, Transducer{
				Local:  len(trs),
				Pos:    r3.Add(origin, rot.Rotate(local)),
				Normal: normal,
				Cycle:  DefaultCycle,
			})
		}
	}
	return &Device{transducers: trs}, nil
}

// NewDevice builds a custom device from explicit positions sharing one
// emission normal. Every transducer gets DefaultCycle.
func NewDevice(positions []r3.Vec, normal r3.Vec) (*Device, error) {
	cycles := make([]uint16, len(positions))
	for i := range cycles {
		cycles[i] = DefaultCycle
	}
	return NewDeviceWithCycles(positions, normal, cycles)
}

// NewDeviceWithCycles is NewDevice with a per-transducer drive cycle.
// len(cycles) must equal len(positions).
func NewDeviceWithCycles(positions []r3.Vec, normal r3.Vec, cycles []uint16) (*Device, error) {
	// Stage 1: shape
	if len(positions) == 0 {
		return nil, ErrEmptyDevice
	}
	if len(cycles) != len(positions) {
		return nil, fmt.Errorf("NewDevice: %d cycles for %d positions: %w", len(cycles), len(positions), ErrInvalidCycle)
	}
	// Stage 2: normal
	if !finite(normal) || r3.Norm(normal) == 0 {
		return nil, ErrInvalidNormal
	}
	n := r3.Unit(normal)

	// Stage 3: transducers
	trs := make([]Transducer, len(positions))
	for i, p := range positions {
		if !finite(p) {
			return nil, fmt.Errorf("NewDevice: transducer %d: %w", i, ErrInvalidPosition)
		}
		if cycles[i] == 0 {
			return nil, fmt.Errorf("NewDevice: transducer %d: %w", i, ErrInvalidCycle)
		}
		trs[i] = Transducer{Local: i, Pos: p, Normal: n, Cycle: cycles[i]}
	}
	return &Device{transducers: trs}, nil
}

// New assembles devices into a Geometry and assigns global indices in device
// order, then local order.
func New(devices []*Device, opts ...Option) (*Geometry, error) {
	if len(devices) == 0 {
		return nil, ErrEmptyGeometry
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	total := 0
	for i, d := range devices {
		if d == nil || len(d.transducers) == 0 {
			return nil, fmt.Errorf("New: device %d: %w", i, ErrEmptyDevice)
		}
		total += len(d.transducers)
	}

	g := &Geometry{
		devices:     make([]*Device, len(devices)),
		transducers: make([]Transducer, 0, total),
		offsets:     make([]int, len(devices)),
		soundSpeed:  o.soundSpeed,
		attenuation: o.attenuation,
	}
	for i, d := range devices {
		// devices are copied so later edits by the caller cannot move the index space
		cp := &Device{transducers: d.Transducers()}
		g.devices[i] = cp
		g.offsets[i] = len(g.transducers)
		for j := range cp.transducers {
			cp.transducers[j].Index = len(g.transducers)
			g.transducers = append(g.transducers, cp.transducers[j])
		}
	}
	return g, nil
}

func finite(v r3.Vec) bool {
	for _, c := range [...]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
