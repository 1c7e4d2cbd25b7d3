package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int, scale float64) Buffer {
	b := make(Buffer, n)
	for i := range b {
		b[i] = float64(i) * scale
	}
	return b
}

func TestMixdownShortestTrackWins(t *testing.T) {
	mix, report := Mixdown(ramp(1000, 1), ramp(950, 1), ramp(1000, 1), ramp(2000, 1))

	assert.Len(t, mix, 950)
	assert.Equal(t, 950, report.Length)
	assert.Equal(t, []int{1000, 950, 1000, 2000}, report.TrackLengths)
	assert.True(t, report.Mismatch)
	assert.ErrorIs(t, report.Err(), ErrTrackLengthMismatch)
}

func TestMixdownSums(t *testing.T) {
	a := Buffer{0.1, 0.2, 0.3}
	b := Buffer{-0.1, 0.5, 0.9}
	c := Buffer{0, 0, 0}
	d := Buffer{1, 1, 1, 1}

	mix, report := Mixdown(a, b, c, d)
	require.Len(t, mix, 3)
	for i := range mix {
		assert.Equal(t, a[i]+b[i]+c[i]+d[i], mix[i])
	}
	assert.Greater(t, mix[2], 1.0, "mixdown does not clip")
	assert.True(t, report.Mismatch)
}

func TestMixdownEqualLengths(t *testing.T) {
	_, report := Mixdown(ramp(10, 1), ramp(10, 2))
	assert.False(t, report.Mismatch)
	assert.NoError(t, report.Err())
}

func TestMixdownEmptyInputs(t *testing.T) {
	mix, report := Mixdown()
	assert.Empty(t, mix)
	assert.Equal(t, 0, report.Length)

	mix, report = Mixdown(ramp(100, 1), Buffer{})
	assert.Empty(t, mix)
	assert.Equal(t, 0, report.Length)
	assert.True(t, report.Mismatch)
}

func TestMixdownRestContributesZero(t *testing.T) {
	cfg := DefaultConfig()
	melody := mustTrack(t, [][2]int{{RestPitch, 2}, {0, 2}})
	base := mustTrack(t, [][2]int{{7, 1}})

	m, err := RenderTrack(melody, cfg.Melody, cfg, nil)
	require.NoError(t, err)
	b, err := RenderTrack(base, cfg.Base, cfg, nil)
	require.NoError(t, err)

	mix, _ := Mixdown(m, b)
	seg := SampleCount(0.25, cfg.SampleRateHz)
	for i := 0; i < seg; i++ {
		if mix[i] != b[i] {
			t.Fatalf("sample %d: mix %v != base %v during melody rest", i, mix[i], b[i])
		}
	}
}
