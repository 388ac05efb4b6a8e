// Package sonora synthesizes drive signals for ultrasonic phased arrays so
// that the emitted field forms one or more pressure foci at requested points.
//
// A computation flows through a small set of packages:
//
//	geometry/     transducer layout: AUTD3 boards, positions, cycles, medium
//	propagation/  focus targets and the M×N complex transfer matrix G
//	backend/      linear-algebra contexts: gonum CPU, device (OpenCL) and mock
//	holo/         gain solvers (Naive, GS, GSPAT, SDP, EVP, LM, Greedy) and Compute
//	constraint/   amplitude policies applied to |q| before encoding
//	drive/        quantization of (phase, amplitude) into duty-cycle drives
//	config/       YAML/JSON session files selecting backend, solver and constraint
//
// Quick example:
//
//	dev, _ := geometry.NewAUTD3(r3.Vec{}, geometry.Identity)
//	geo, _ := geometry.New([]*geometry.Device{dev})
//	foci := []propagation.Focus{{Pos: r3.Vec{X: 86, Y: 66, Z: 150}, Amp: propagation.Pascal(5e3)}}
//	res, err := holo.Compute(geo, foci, holo.DefaultGSPAT(), backend.NewCPU(), constraint.Normalize())
//
// Solvers never touch matrices directly; every product, eigenproblem and
// linear solve goes through a backend.Context, so the same solver runs on
// any registered backend.
//
// SPDX-License-Identifier: MIT
package sonora
