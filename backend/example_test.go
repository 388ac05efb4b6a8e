// SPDX-License-Identifier: MIT

package backend_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/sonora/backend"
)

// ExampleOpen computes a back-propagation Gᴴp on the mock device.
func ExampleOpen() {
	b, err := backend.Open("mock")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer b.Close()

	ctx, err := b.Open()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer ctx.Close()

	g := mat.NewCDense(1, 2, []complex128{1i, 2})
	if err := ctx.Pin(g); err != nil {
		fmt.Println(err)
		return
	}
	q := make([]complex128, 2)
	if err := ctx.Gemv(backend.ConjTrans, 1, g, []complex128{3}, 0, q); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(q)
	// Output: [(0-3i) (6+0i)]
}
