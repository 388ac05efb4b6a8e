// SPDX-License-Identifier: MIT

// Package constraint maps solver amplitudes |q| onto the normalized emission
// range [0,1] of a transducer.
//
// The variant set is closed:
//
//	DontCare     clamp to [0,1]
//	Normalize    divide by the largest amplitude of the result
//	Uniform(v)   emit v wherever the solver produced a non-zero drive
//	Clamp(a,b)   clip into [a,b]
//
// Apply is pure and never fails once Validate has passed; every output lies in
// [0,1], which is what the drive encoder requires.
package constraint

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sonora/internal/errcat"
)

// ErrInvalidConstraint is returned by Validate for an out-of-range parameter.
var ErrInvalidConstraint = errcat.Configuration("constraint: invalid parameter")

// Kind enumerates the constraint variants.
type Kind uint8

const (
	KindDontCare Kind = iota
	KindNormalize
	KindUniform
	KindClamp
)

var kindNames = [...]string{
	KindDontCare:  "dont_care",
	KindNormalize: "normalize",
	KindUniform:   "uniform",
	KindClamp:     "clamp",
}

// String returns the configuration name of k.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidConstraint, s)
}

// Constraint is one variant with its parameters. The zero value is DontCare.
type Constraint struct {
	kind     Kind
	value    float64
	min, max float64
}

// DontCare clamps every amplitude into [0,1].
func DontCare() Constraint { return Constraint{kind: KindDontCare} }

// Normalize divides every amplitude by the largest one.
func Normalize() Constraint { return Constraint{kind: KindNormalize} }

// Uniform emits v for every transducer with a non-zero drive.
func Uniform(v float64) Constraint { return Constraint{kind: KindUniform, value: v} }

// Clamp clips every amplitude into [min,max].
func Clamp(min, max float64) Constraint { return Constraint{kind: KindClamp, min: min, max: max} }

// Kind returns the variant.
func (c Constraint) Kind() Kind { return c.kind }

// Value returns the Uniform level (0 for other variants).
func (c Constraint) Value() float64 { return c.value }

// Bounds returns the Clamp range (0,0 for other variants).
func (c Constraint) Bounds() (min, max float64) { return c.min, c.max }

// String renders c as it would be written in a session file.
func (c Constraint) String() string {
	switch c.kind {
	case KindUniform:
		return fmt.Sprintf("uniform(%g)", c.value)
	case KindClamp:
		return fmt.Sprintf("clamp(%g,%g)", c.min, c.max)
	default:
		return c.kind.String()
	}
}

// Validate checks 0 ≤ v ≤ 1 for Uniform and 0 ≤ min ≤ max ≤ 1 for Clamp.
func (c Constraint) Validate() error {
	switch c.kind {
	case KindDontCare, KindNormalize:
		return nil
	case KindUniform:
		if !unit(c.value) {
			return fmt.Errorf("%w: uniform value %g not in [0,1]", ErrInvalidConstraint, c.value)
		}
		return nil
	case KindClamp:
		if !unit(c.min) || !unit(c.max) || c.min > c.max {
			return fmt.Errorf("%w: clamp range [%g,%g] not within [0,1]", ErrInvalidConstraint, c.min, c.max)
		}
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrInvalidConstraint, c.kind)
	}
}

// Apply maps amps into [0,1] and returns a new slice. NaN amplitudes are
// treated as zero. Apply panics if c does not validate.
func (c Constraint) Apply(amps []float64) []float64 {
	if err := c.Validate(); err != nil {
		panic(err.Error())
	}
	out := make([]float64, len(amps))
	switch c.kind {
	case KindDontCare:
		for i, a := range amps {
			out[i] = clamp(a, 0, 1)
		}
	case KindNormalize:
		var peak float64
		for _, a := range amps {
			if a > peak && !math.IsInf(a, 1) {
				peak = a
			}
		}
		if peak == 0 {
			return out
		}
		for i, a := range amps {
			out[i] = clamp(a/peak, 0, 1)
		}
	case KindUniform:
		for i, a := range amps {
			if a != 0 && !math.IsNaN(a) {
				out[i] = c.value
			}
		}
	case KindClamp:
		for i, a := range amps {
			out[i] = clamp(a, c.min, c.max)
		}
	}
	return out
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return lo
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
