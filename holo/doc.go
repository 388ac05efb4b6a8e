// SPDX-License-Identifier: MIT

// Package holo synthesizes multi-focus acoustic holograms.
//
// Given the transfer matrix G ∈ ℂ^{M×N} from N transducers to M foci and the
// target pressures p, a Solver computes a complex drive q ∈ ℂ^N whose field
// G·q approximates p in magnitude. Phases at the foci are free.
//
// Solvers:
//
//	Naive      q = Gᴴp
//	GS         Gerchberg–Saxton phase retrieval, fixed iteration count
//	GSPAT      GS with a normalized back-propagator and energy compensation
//	SDP        semidefinite relaxation solved by block-coordinate descent
//	EVP        eigenvalue method with a Tikhonov-regularized least-squares fit
//	LM         Levenberg–Marquardt on transducer and focus phases
//	Greedy     single-pass coordinate search over discretized phases
//
// Every solver is a parameter struct with a DefaultXxx constructor. A solver
// never mutates G and always reduces to phase matching (q ∝ Gᴴp up to a
// positive per-transducer scale) when there is a single focus.
//
// Compute runs the whole pipeline: build G, open a backend context, solve,
// apply the amplitude constraint and encode one Drive per transducer.
//
// Errors:
//   - ErrConfiguration (any invalid input, including ErrInvalidParameter);
//   - ErrBackend (a numeric failure, wrapped with solver and step:
//     "holo: sdp: solve: backend cpu: solve: backend: singular matrix").
//
// Non-convergence is not an error: solvers report Iterations and Converged.
package holo
