// SPDX-License-Identifier: MIT

package holo_test

import (
	"testing"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/holo"
	"github.com/katalvlaran/sonora/propagation"
)

func benchSolver(b *testing.B, s holo.Solver) {
	geo := autd(b)
	foci := append(twoFoci(geo, 5e3),
		propagation.Focus{Pos: above(geo, 0, 120), Amp: 5e3},
		propagation.Focus{Pos: above(geo, 0, 200), Amp: 5e3})
	tm, err := propagation.Build(geo, foci)
	if err != nil {
		b.Fatal(err)
	}
	ctx, err := backend.NewCPU().Open()
	if err != nil {
		b.Fatal(err)
	}
	defer ctx.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Solve(tm, ctx); err != nil {
			b.Fatalf("%s failed: %v", s.Name(), err)
		}
	}
}

func BenchmarkNaive_249x4(b *testing.B)  { benchSolver(b, holo.Naive{}) }
func BenchmarkGS_249x4(b *testing.B)     { benchSolver(b, holo.DefaultGS()) }
func BenchmarkGSPAT_249x4(b *testing.B)  { benchSolver(b, holo.DefaultGSPAT()) }
func BenchmarkSDP_249x4(b *testing.B)    { benchSolver(b, holo.DefaultSDP()) }
func BenchmarkEVP_249x4(b *testing.B)    { benchSolver(b, holo.DefaultEVP()) }
func BenchmarkLM_249x4(b *testing.B)     { benchSolver(b, holo.DefaultLM()) }
func BenchmarkGreedy_249x4(b *testing.B) { benchSolver(b, holo.DefaultGreedy()) }
