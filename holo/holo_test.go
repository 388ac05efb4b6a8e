// SPDX-License-Identifier: MIT

package holo_test

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/sonora/backend"
	"github.com/katalvlaran/sonora/constraint"
	"github.com/katalvlaran/sonora/drive"
	"github.com/katalvlaran/sonora/geometry"
	"github.com/katalvlaran/sonora/holo"
	"github.com/katalvlaran/sonora/propagation"
)

// TestSingleFocus_PhaseMatching checks that every solver reduces to direct
// phase matching, phase = −k·d, for one focus under Uniform(1). The target is
// well below what one device reaches at 150 mm.
func TestSingleFocus_PhaseMatching(t *testing.T) {
	geo := autd(t)
	focus := propagation.Focus{Pos: above(geo, 12, 150), Amp: propagation.Pascal(5e3)}
	enc, err := drive.NewEncoder(geometry.DefaultCycle)
	require.NoError(t, err)

	want := make([]drive.Drive, geo.NumTransducers())
	for i, tr := range geo.Transducers() {
		d := r3.Norm(r3.Sub(focus.Pos, tr.Pos))
		want[i] = enc.Encode(-geo.Wavenumber(i)*d, 1)
	}

	for name, b := range backends() {
		for _, s := range allSolvers() {
			t.Run(name+"/"+s.Name(), func(t *testing.T) {
				res, err := holo.Compute(geo, []propagation.Focus{focus}, s, b, constraint.Uniform(1))
				require.NoError(t, err)
				require.Len(t, res.Drives, len(want))
				for i, d := range res.Drives {
					assert.Equal(t, enc.MaxDuty(), d.Duty, "transducer %d", i)
					assert.LessOrEqual(t, phaseSteps(d.Phase, want[i].Phase, enc.Cycle()), 1, "transducer %d", i)
				}
			})
		}
	}
}

// TestTwoFoci_UniformHalf is the two-point scenario under Uniform(0.5).
func TestTwoFoci_UniformHalf(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, propagation.Pascal(5e3))
	for _, s := range allSolvers() {
		t.Run(s.Name(), func(t *testing.T) {
			res, err := holo.Compute(geo, foci, s, backend.NewCPU(), constraint.Uniform(0.5))
			require.NoError(t, err)

			nonZeroPhase := false
			for i, d := range res.Drives {
				assert.Equal(t, uint16(683), d.Duty, "transducer %d", i)
				if d.Phase != 0 {
					nonZeroPhase = true
				}
			}
			assert.True(t, nonZeroPhase)
		})
	}
}

// TestClamp_DutyRange checks every duty lies in [encode(min), encode(max)].
func TestClamp_DutyRange(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, propagation.Pascal(5e3))
	enc, err := drive.NewEncoder(geometry.DefaultCycle)
	require.NoError(t, err)
	lo, hi := enc.Encode(0, 0.2).Duty, enc.Encode(0, 0.7).Duty

	for _, s := range allSolvers() {
		t.Run(s.Name(), func(t *testing.T) {
			res, err := holo.Compute(geo, foci, s, backend.NewCPU(), constraint.Clamp(0.2, 0.7))
			require.NoError(t, err)
			for _, d := range res.Drives {
				assert.GreaterOrEqual(t, d.Duty, lo)
				assert.LessOrEqual(t, d.Duty, hi)
			}
		})
	}
}

// TestBackendsAgree compares cpu and mock solver outputs.
func TestBackendsAgree(t *testing.T) {
	geo := autd(t)
	foci := append(twoFoci(geo, propagation.Pascal(5e3)),
		propagation.Focus{Pos: above(geo, 0, 200), Amp: propagation.Pascal(3e3)})
	for _, s := range allSolvers() {
		t.Run(s.Name(), func(t *testing.T) {
			_, cpu := solve(t, backend.NewCPU(), s, geo, foci)
			_, dev := solve(t, backend.NewDevice(backend.NewMockDriver()), s, geo, foci)
			assert.Equal(t, cpu.Iterations, dev.Iterations)
			assert.LessOrEqual(t, relDiff(cpu.Q, dev.Q), 1e-8)
		})
	}
}

// TestNaive_IsBackpropagation checks q = Gᴴp entry by entry.
func TestNaive_IsBackpropagation(t *testing.T) {
	geo := autd(t)
	tm, sol := solve(t, backend.NewCPU(), holo.Naive{}, geo, twoFoci(geo, 5e3))
	p := tm.Targets()
	for n, q := range sol.Q {
		var want complex128
		for m := range p {
			want += cmplx.Conj(tm.At(m, n)) * p[m]
		}
		assert.InDelta(t, 0, cmplx.Abs(want-q), 1e-9*cmplx.Abs(want))
	}
}

// TestBalancedFoci checks that the amplitude-aware solvers reach both foci
// with comparable pressure.
func TestBalancedFoci(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, propagation.Pascal(5e3))
	for _, s := range []holo.Solver{holo.DefaultGS(), holo.DefaultGSPAT(), holo.DefaultSDP(), holo.DefaultEVP()} {
		t.Run(s.Name(), func(t *testing.T) {
			tm, sol := solve(t, backend.NewCPU(), s, geo, foci)
			field, err := tm.Field(sol.Q)
			require.NoError(t, err)
			a, b := cmplx.Abs(field[0]), cmplx.Abs(field[1])
			assert.Greater(t, math.Min(a, b)/math.Max(a, b), 0.5)
		})
	}
}

// TestGS_ExactRepeat checks the fixed iteration count and the Repeat = 0 case.
func TestGS_ExactRepeat(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, 5e3)

	_, sol := solve(t, backend.NewCPU(), holo.GS{Repeat: 7}, geo, foci)
	assert.Equal(t, 7, sol.Iterations)
	assert.True(t, sol.Converged)

	_, sol = solve(t, backend.NewCPU(), holo.GS{Repeat: 0}, geo, foci)
	assert.Equal(t, 0, sol.Iterations)
	for _, q := range sol.Q {
		assert.InDelta(t, 1, cmplx.Abs(q), 1e-12)
	}
}

// TestGS_Resume: 2k iterations equal k iterations resumed from the output of
// the first k.
func TestGS_Resume(t *testing.T) {
	geo := autd(t)
	foci := append(twoFoci(geo, 5e3), propagation.Focus{Pos: above(geo, 0, 200), Amp: 3e3})
	const k = 4

	_, full := solve(t, backend.NewCPU(), holo.GS{Repeat: 2 * k}, geo, foci)
	_, half := solve(t, backend.NewCPU(), holo.GS{Repeat: k}, geo, foci)
	_, resumed := solve(t, backend.NewCPU(), holo.GS{Repeat: k, Initial: half.Q}, geo, foci)

	assert.Equal(t, 2*k, full.Iterations)
	assert.LessOrEqual(t, relDiff(full.Q, resumed.Q), 1e-12)
}

// TestGS_Initial accepts a start drive of length N and rejects any other.
func TestGS_Initial(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, 5e3)
	init := make([]complex128, geo.NumTransducers())
	for i := range init {
		init[i] = 1
	}
	_, sol := solve(t, backend.NewCPU(), holo.GS{Repeat: 3, Initial: init}, geo, foci)
	assert.Equal(t, 3, sol.Iterations)

	tm, err := propagation.Build(geo, foci)
	require.NoError(t, err)
	ctx, err := backend.NewCPU().Open()
	require.NoError(t, err)
	defer ctx.Close()
	_, err = holo.GS{Repeat: 1, Initial: init[:3]}.Solve(tm, ctx)
	assert.ErrorIs(t, err, holo.ErrInvalidParameter)
	assert.ErrorIs(t, err, holo.ErrConfiguration)
}

// TestSDP_SeedDeterminism checks that equal seeds give identical drives.
func TestSDP_SeedDeterminism(t *testing.T) {
	geo := autd(t)
	foci := append(twoFoci(geo, 5e3), propagation.Focus{Pos: above(geo, 0, 180), Amp: 5e3})
	s := holo.DefaultSDP()
	s.Seed = 42
	_, a := solve(t, backend.NewCPU(), s, geo, foci)
	_, b := solve(t, backend.NewCPU(), s, geo, foci)
	assert.Empty(t, cmp.Diff(a.Q, b.Q))
}

// TestGreedy_Deterministic runs the same problem twice and compares exactly.
func TestGreedy_Deterministic(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, 5e3)
	for _, s := range []holo.Solver{holo.DefaultGreedy(), holo.DefaultLSSGreedy(), holo.Greedy{PhaseDiv: 4}} {
		_, a := solve(t, backend.NewCPU(), s, geo, foci)
		_, b := solve(t, backend.NewCPU(), s, geo, foci)
		assert.Empty(t, cmp.Diff(a.Q, b.Q), s.Name())
		for _, q := range a.Q {
			assert.InDelta(t, 1, cmplx.Abs(q), 1e-12)
		}
	}
}

// TestLSSGreedy_ScaleInvariant: the least-squares fit depends on the ratio of
// the targets, not on their absolute pressure. Power-of-two scaling keeps the
// rescaled targets bit-identical.
func TestLSSGreedy_ScaleInvariant(t *testing.T) {
	geo := autd(t)
	foci := func(a float64) []propagation.Focus {
		return []propagation.Focus{
			{Pos: above(geo, -30, 150), Amp: propagation.Pascal(a)},
			{Pos: above(geo, 30, 150), Amp: propagation.Pascal(a / 2)},
		}
	}
	_, low := solve(t, backend.NewCPU(), holo.DefaultLSSGreedy(), geo, foci(4096))
	_, high := solve(t, backend.NewCPU(), holo.DefaultLSSGreedy(), geo, foci(4096*64))
	assert.Empty(t, cmp.Diff(low.Q, high.Q))
}

// TestLSSGreedy_ReachesFocus: for one reachable focus the field equals the
// coherent sum Σₙ|Gₘₙ|, whatever the requested pressure.
func TestLSSGreedy_ReachesFocus(t *testing.T) {
	geo := autd(t)
	for _, amp := range []float64{50, 5e3, 5e6} {
		tm, sol := solve(t, backend.NewCPU(), holo.DefaultLSSGreedy(), geo,
			[]propagation.Focus{{Pos: above(geo, 0, 150), Amp: propagation.Pascal(amp)}})
		field, err := tm.Field(sol.Q)
		require.NoError(t, err)
		var coherent float64
		for n := 0; n < geo.NumTransducers(); n++ {
			coherent += cmplx.Abs(tm.At(0, n))
		}
		assert.InDelta(t, coherent, cmplx.Abs(field[0]), 1e-9*coherent, "amp %g", amp)
	}
}

// TestLM_Bounds checks the iteration bound and the single-focus shortcut.
func TestLM_Bounds(t *testing.T) {
	geo := autd(t)

	s := holo.DefaultLM()
	s.KMax = 2
	_, sol := solve(t, backend.NewCPU(), s, geo, twoFoci(geo, 5e3))
	assert.LessOrEqual(t, sol.Iterations, 2)

	_, sol = solve(t, backend.NewCPU(), holo.DefaultLM(), geo,
		[]propagation.Focus{{Pos: above(geo, 0, 150), Amp: 5e3}})
	assert.Equal(t, 0, sol.Iterations)
	assert.True(t, sol.Converged)
}

// TestLM_ConvergedInitial: an explicit start that already matches one focus
// stops before the first iteration.
func TestLM_ConvergedInitial(t *testing.T) {
	geo := autd(t)
	foci := []propagation.Focus{{Pos: above(geo, 0, 150), Amp: 5e3}}
	tm, err := propagation.Build(geo, foci)
	require.NoError(t, err)

	s := holo.DefaultLM()
	s.Initial = make([]float64, geo.NumTransducers())
	for n := range s.Initial {
		s.Initial[n] = -cmplx.Phase(tm.At(0, n))
	}
	_, sol := solve(t, backend.NewCPU(), s, geo, foci)
	assert.Equal(t, 0, sol.Iterations)
	assert.True(t, sol.Converged)
	for n, q := range sol.Q {
		assert.InDelta(t, 0, cmplx.Abs(q-cmplx.Exp(complex(0, s.Initial[n]))), 1e-12)
	}
}

// TestLM_Initial accepts N or N+M phases.
func TestLM_Initial(t *testing.T) {
	geo := autd(t)
	foci := twoFoci(geo, 5e3)
	N := geo.NumTransducers()

	for _, n := range []int{N, N + 2} {
		s := holo.DefaultLM()
		s.Initial = make([]float64, n)
		_, sol := solve(t, backend.NewCPU(), s, geo, foci)
		assert.LessOrEqual(t, sol.Iterations, s.KMax)
	}

	tm, err := propagation.Build(geo, foci)
	require.NoError(t, err)
	ctx, err := backend.NewCPU().Open()
	require.NoError(t, err)
	defer ctx.Close()
	s := holo.DefaultLM()
	s.Initial = make([]float64, 5)
	_, err = s.Solve(tm, ctx)
	assert.ErrorIs(t, err, holo.ErrInvalidParameter)
}

// TestValidate covers the parameter checks of every solver.
func TestValidate(t *testing.T) {
	invalid := []holo.Validator{
		holo.GS{Repeat: -1},
		holo.GSPAT{Repeat: -1},
		holo.SDP{Alpha: 0, Lambda: 0.8},
		holo.SDP{Alpha: 1e-3, Lambda: math.NaN()},
		holo.SDP{Alpha: 1e-3, Lambda: 0.8, Repeat: -1},
		holo.EVP{Gamma: -1},
		holo.EVP{Gamma: math.Inf(1)},
		holo.LM{Eps1: -1, Tau: 1},
		holo.LM{Tau: 0},
		holo.LM{Tau: 1, KMax: -1},
		holo.Greedy{PhaseDiv: 0},
		holo.Greedy{PhaseDiv: 4, Objective: 7},
	}
	for _, v := range invalid {
		err := v.Validate()
		assert.ErrorIs(t, err, holo.ErrInvalidParameter, "%#v", v)
		assert.ErrorIs(t, err, holo.ErrConfiguration, "%#v", v)
	}
	for _, s := range allSolvers() {
		assert.NoError(t, s.(holo.Validator).Validate(), s.Name())
	}
	assert.EqualError(t, holo.GS{Repeat: -1}.Validate(),
		"holo: gs: repeat -1 < 0: holo: invalid solver parameter")
}

// TestNewSolver maps every name to its default solver.
func TestNewSolver(t *testing.T) {
	for _, s := range allSolvers() {
		got, err := holo.NewSolver(s.Name())
		require.NoError(t, err)
		assert.Equal(t, s.Name(), got.Name())
	}
	_, err := holo.NewSolver("annealing")
	assert.ErrorIs(t, err, holo.ErrUnknownSolver)
}
