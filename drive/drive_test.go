// SPDX-License-Identifier: MIT

package drive_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/sonora/drive"
	"github.com/katalvlaran/sonora/internal/errcat"
)

func encoder(t *testing.T, cycle uint16) drive.Encoder {
	t.Helper()
	e, err := drive.NewEncoder(cycle)
	require.NoError(t, err)
	return e
}

func TestNewEncoder_Invalid(t *testing.T) {
	for _, c := range []uint16{0, 1, 3, 4095} {
		_, err := drive.NewEncoder(c)
		assert.ErrorIs(t, err, drive.ErrInvalidCycle, "cycle %d", c)
		assert.ErrorIs(t, err, errcat.ErrConfiguration)
	}
}

func TestEncode_Known(t *testing.T) {
	e := encoder(t, 4096)
	assert.Equal(t, uint16(2048), e.MaxDuty())

	cases := []struct {
		name  string
		phase float64
		amp   float64
		want  drive.Drive
	}{
		{"zero", 0, 0, drive.Drive{Phase: 0, Duty: 0}},
		{"full", 0, 1, drive.Drive{Phase: 0, Duty: 2048}},
		{"half", math.Pi, 0.5, drive.Drive{Phase: 2048, Duty: 683}},
		{"negative phase wraps", -math.Pi / 2, 1, drive.Drive{Phase: 3072, Duty: 2048}},
		{"2π wraps to 0", 2 * math.Pi, 1, drive.Drive{Phase: 0, Duty: 2048}},
		{"just below 2π rounds to 0", 2*math.Pi - 1e-6, 1, drive.Drive{Phase: 0, Duty: 2048}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Encode(tc.phase, tc.amp))
		})
	}
}

func TestEncode_PanicsOutOfRange(t *testing.T) {
	e := encoder(t, 4096)
	for _, a := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		assert.Panics(t, func() { e.Encode(0, a) }, "amp %v", a)
	}
}

// TestRoundTrip reproduces phase and amplitude within one quantization step.
func TestRoundTrip(t *testing.T) {
	for _, cycle := range []uint16{4096, 2048, 16} {
		e := encoder(t, cycle)
		dutyStep := math.Pi / float64(cycle)
		for i := 0; i <= 50; i++ {
			amp := float64(i) / 50
			phase := -3*math.Pi + float64(i)*0.37

			d := e.Encode(phase, amp)
			assert.Less(t, d.Phase, cycle)
			assert.LessOrEqual(t, d.Duty, e.MaxDuty())

			gotPhase, gotAmp := e.Decode(d)
			want := math.Mod(phase, 2*math.Pi)
			if want < 0 {
				want += 2 * math.Pi
			}
			diff := math.Abs(gotPhase - want)
			diff = math.Min(diff, 2*math.Pi-diff)
			assert.LessOrEqual(t, diff, e.PhaseStep(), "cycle %d phase %v", cycle, phase)
			// |d sin(x)/dx| ≤ 1, so one duty step moves amplitude by at most π/cycle.
			assert.LessOrEqual(t, math.Abs(gotAmp-amp), dutyStep, "cycle %d amp %v", cycle, amp)
		}
	}
}

func TestDecode_Saturates(t *testing.T) {
	e := encoder(t, 16)
	_, amp := e.Decode(drive.Drive{Phase: 17, Duty: 100})
	assert.InDelta(t, 1, amp, 1e-15)
	phase, _ := e.Decode(drive.Drive{Phase: 17})
	assert.InDelta(t, 2*math.Pi/16, phase, 1e-15)
}

func TestDrive_String(t *testing.T) {
	assert.Equal(t, "12/34", drive.Drive{Phase: 12, Duty: 34}.String())
}
