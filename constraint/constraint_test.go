// SPDX-License-Identifier: MIT

package constraint_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonora/constraint"
	"github.com/katalvlaran/sonora/internal/errcat"
)

func TestApply(t *testing.T) {
	amps := []float64{0, 0.25, 2, math.NaN()}

	cases := []struct {
		name string
		c    constraint.Constraint
		want []float64
	}{
		{"DontCare", constraint.DontCare(), []float64{0, 0.25, 1, 0}},
		{"Normalize", constraint.Normalize(), []float64{0, 0.125, 1, 0}},
		{"Uniform", constraint.Uniform(0.5), []float64{0, 0.5, 0.5, 0}},
		{"Clamp", constraint.Clamp(0.3, 0.9), []float64{0.3, 0.3, 0.9, 0.3}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.c.Apply(amps)
			assert.Equal(t, tc.want, got)
			for _, v := range got {
				assert.True(t, v >= 0 && v <= 1)
			}
		})
	}
	assert.True(t, math.IsNaN(amps[3]), "input is not modified")
}

func TestApply_NormalizeAllZero(t *testing.T) {
	got := constraint.Normalize().Apply([]float64{0, 0, 0})
	assert.Equal(t, []float64{0, 0, 0}, got)
}

func TestZeroValueIsDontCare(t *testing.T) {
	var c constraint.Constraint
	assert.Equal(t, constraint.KindDontCare, c.Kind())
	assert.Equal(t, []float64{1}, c.Apply([]float64{7}))
}

func TestValidate(t *testing.T) {
	valid := []constraint.Constraint{
		constraint.DontCare(),
		constraint.Normalize(),
		constraint.Uniform(0),
		constraint.Uniform(1),
		constraint.Clamp(0, 1),
		constraint.Clamp(0.5, 0.5),
	}
	for _, c := range valid {
		assert.NoError(t, c.Validate(), c.String())
	}

	invalid := []constraint.Constraint{
		constraint.Uniform(-0.1),
		constraint.Uniform(1.5),
		constraint.Uniform(math.NaN()),
		constraint.Clamp(0.6, 0.4),
		constraint.Clamp(-1, 0.5),
		constraint.Clamp(0, 2),
	}
	for _, c := range invalid {
		err := c.Validate()
		require.Error(t, err, c.String())
		assert.ErrorIs(t, err, constraint.ErrInvalidConstraint)
		assert.ErrorIs(t, err, errcat.ErrConfiguration)
		assert.Panics(t, func() { c.Apply([]float64{1}) })
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []constraint.Kind{
		constraint.KindDontCare, constraint.KindNormalize, constraint.KindUniform, constraint.KindClamp,
	} {
		got, err := constraint.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := constraint.ParseKind("softmax")
	assert.ErrorIs(t, err, constraint.ErrInvalidConstraint)
	assert.Equal(t, "Kind(9)", constraint.Kind(9).String())
}

func TestAccessors(t *testing.T) {
	c := constraint.Clamp(0.1, 0.7)
	lo, hi := c.Bounds()
	assert.Equal(t, 0.1, lo)
	assert.Equal(t, 0.7, hi)
	assert.Equal(t, "clamp(0.1,0.7)", c.String())
	assert.Equal(t, 0.25, constraint.Uniform(0.25).Value())
	assert.Equal(t, "uniform(0.25)", constraint.Uniform(0.25).String())
}
