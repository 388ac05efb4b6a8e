// SPDX-License-Identifier: MIT

package holo_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/constraint"
	"github.com/katalvlaran/sonora/geometry"
	"github.com/katalvlaran/sonora/holo"
	"github.com/katalvlaran/sonora/propagation"
)

// ExampleCompute focuses two points with GSPAT and emits every transducer at
// half amplitude.
func ExampleCompute() {
	dev, err := geometry.NewAUTD3(r3.Vec{}, geometry.Identity)
	if err != nil {
		fmt.Println(err)
		return
	}
	geo, err := geometry.New([]*geometry.Device{dev})
	if err != nil {
		fmt.Println(err)
		return
	}
	center := geo.Center()
	foci := []propagation.Focus{
		{Pos: r3.Add(center, r3.Vec{X: -30, Z: 150}), Amp: propagation.Pascal(5e3)},
		{Pos: r3.Add(center, r3.Vec{X: 30, Z: 150}), Amp: propagation.Pascal(5e3)},
	}

	res, err := holo.Compute(geo, foci, holo.DefaultGSPAT(), backend.NewCPU(), constraint.Uniform(0.5))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(res.Drives), res.Drives[0].Duty, res.Iterations)
	// Output: 249 683 100
}
