// SPDX-License-Identifier: MIT

// Package backend abstracts the dense complex linear algebra used by the
// solver engine.
//
// A Backend is chosen once per session and opened once per solve. The
// returned Context owns every resource the solve needs (device buffers on a
// GPU) and releases all of them on Close, including on error paths:
//
//	ctx, err := b.Open()
//	if err != nil {
//		return err
//	}
//	defer ctx.Close()
//
//	_ = ctx.Pin(G)                       // G stays resident for the context's life
//	_ = ctx.Gemv(blas.ConjTrans, 1, G, p, 0, q)
//
// Implementations:
//   - CPU: gonum cblas128 for products, gonum mat for eigen and solves.
//   - Device: products run on a Driver (OpenCL with -tags opencl, or the
//     host-memory mock driver); eigen and solves run on the host.
//
// Every implementation satisfies the same Context contract, and solvers never
// depend on a concrete type. Outputs agree across implementations to within
// floating-point summation order.
//
// Hermitian eigenproblems are solved through the real symmetric embedding
//
//	H = A + iB  ↦  S = [[A, −B], [B, A]]
//
// whose spectrum is that of H with every eigenvalue doubled. Complex linear
// systems use the same embedding with an LU factorization.
package backend
