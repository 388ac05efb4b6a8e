// SPDX-License-Identifier: MIT

package holo_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/geometry"
	"github.com/katalvlaran/sonora/holo"
	"github.com/katalvlaran/sonora/propagation"
)

// autd returns a single standard device at the origin.
func autd(t testing.TB) *geometry.Geometry {
	t.Helper()
	dev, err := geometry.NewAUTD3(r3.Vec{}, geometry.Identity)
	require.NoError(t, err)
	geo, err := geometry.New([]*geometry.Device{dev})
	require.NoError(t, err)
	return geo
}

// above returns the point dz millimetres above the array center, shifted by dx.
func above(geo *geometry.Geometry, dx, dz float64) r3.Vec {
	return r3.Add(geo.Center(), r3.Vec{X: dx, Z: dz})
}

// twoFoci is the standard two-point scenario: 60 mm apart at 150 mm.
func twoFoci(geo *geometry.Geometry, amp propagation.Amplitude) []propagation.Focus {
	return []propagation.Focus{
		{Pos: above(geo, -30, 150), Amp: amp},
		{Pos: above(geo, 30, 150), Amp: amp},
	}
}

// allSolvers lists every solver with default parameters.
func allSolvers() []holo.Solver {
	return []holo.Solver{
		holo.Naive{},
		holo.DefaultGS(),
		holo.DefaultGSPAT(),
		holo.DefaultSDP(),
		holo.DefaultEVP(),
		holo.DefaultLM(),
		holo.DefaultGreedy(),
		holo.DefaultLSSGreedy(),
	}
}

func backends() map[string]backend.Backend {
	return map[string]backend.Backend{
		"cpu":  backend.NewCPU(),
		"mock": backend.NewDevice(backend.NewMockDriver()),
	}
}

// solve builds G and runs s on a fresh context.
func solve(t testing.TB, b backend.Backend, s holo.Solver, geo *geometry.Geometry, foci []propagation.Focus) (*propagation.TransferMatrix, *holo.Solution) {
	t.Helper()
	tm, err := propagation.Build(geo, foci)
	require.NoError(t, err)
	ctx, err := b.Open()
	require.NoError(t, err)
	defer ctx.Close()
	sol, err := s.Solve(tm, ctx)
	require.NoError(t, err)
	require.Len(t, sol.Q, geo.NumTransducers())
	return tm, sol
}

// phaseSteps is the circular distance between two encoded phases.
func phaseSteps(a, b, cycle uint16) int {
	d := int(a) - int(b)
	if d < 0 {
		d = -d
	}
	if c := int(cycle) - d; c < d {
		d = c
	}
	return d
}

// relDiff is max|a−b| / max|a|.
func relDiff(a, b []complex128) float64 {
	var scale, diff float64
	for i := range a {
		scale = math.Max(scale, cmplx.Abs(a[i]))
		diff = math.Max(diff, cmplx.Abs(a[i]-b[i]))
	}
	if scale == 0 {
		return diff
	}
	return diff / scale
}
