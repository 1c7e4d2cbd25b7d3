package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRate = 44100

func TestSampleCount(t *testing.T) {
	tests := []struct {
		name string
		dur  float64
		rate int
		want int
	}{
		{"quarter second", 0.25, 44100, 11025},
		{"truncates fraction", 0.3, 1000, 300},
		{"truncates not rounds", 0.0009999, 1000, 0},
		{"zero", 0, 44100, 0},
		{"tempo 200 half note", 60.0 / 200 / 2, 44100, 6615},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SampleCount(tt.dur, tt.rate))
		})
	}
}

func TestSquare(t *testing.T) {
	buf, err := Square(100, 0.25, 0.4, testRate)
	require.NoError(t, err)
	require.Len(t, buf, 11025)

	assert.Equal(t, 0.0, buf[0], "sin(0) is zero")
	assert.Equal(t, 0.4, buf[1])
	assert.Equal(t, 0.4, buf[220])
	assert.Equal(t, -0.4, buf[221])

	for i, s := range buf {
		if s != 0 && s != 0.4 && s != -0.4 {
			t.Fatalf("sample %d = %v, want one of {-0.4, 0, 0.4}", i, s)
		}
	}
}

func TestSawtooth(t *testing.T) {
	buf, err := Sawtooth(100, 0.25, 0.5, testRate)
	require.NoError(t, err)
	require.Len(t, buf, 11025)

	assert.InDelta(t, -0.5, buf[0], 1e-12)
	assert.InDelta(t, 0.5*(2*100.0/441-1), buf[100], 1e-12)
	assert.InDelta(t, -0.5, buf[441], 1e-12, "ramp restarts every period")

	for i, s := range buf {
		if s < -0.5 || s >= 0.5 {
			t.Fatalf("sample %d = %v out of [-0.5, 0.5)", i, s)
		}
	}
}

func TestWhiteNoise(t *testing.T) {
	a, err := WhiteNoise(0.1, 0.8, testRate, NewSource(42))
	require.NoError(t, err)
	b, err := WhiteNoise(0.1, 0.8, testRate, NewSource(42))
	require.NoError(t, err)

	require.Len(t, a, 4410)
	assert.Equal(t, a, b, "same seed must give identical buffers")

	for i, s := range a {
		if s < -0.8 || s >= 0.8 {
			t.Fatalf("sample %d = %v out of [-0.8, 0.8)", i, s)
		}
	}

	c, err := WhiteNoise(0.1, 0.8, testRate, NewSource(43))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSilence(t *testing.T) {
	buf, err := Silence(0.5, 8000)
	require.NoError(t, err)
	require.Len(t, buf, 4000)
	for _, s := range buf {
		assert.Equal(t, 0.0, s)
	}
}

func TestOscillatorsZeroDuration(t *testing.T) {
	for _, shape := range []Shape{ShapeSquare, ShapeSawtooth, ShapeNoise, ShapeSilence} {
		t.Run(shape.String(), func(t *testing.T) {
			buf, err := Oscillate(shape, 440, 0, 1, testRate, NewSource(1))
			require.NoError(t, err)
			assert.NotNil(t, buf)
			assert.Empty(t, buf)
		})
	}
}

func TestOscillatorsInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		dur  float64
		amp  float64
		rate int
	}{
		{"negative duration", 440, -1, 1, testRate},
		{"nan duration", 440, math.NaN(), 1, testRate},
		{"infinite duration", 440, math.Inf(1), 1, testRate},
		{"negative frequency", -440, 1, 1, testRate},
		{"infinite frequency", math.Inf(1), 1, 1, testRate},
		{"negative amplitude", 440, 1, -0.5, testRate},
		{"nan amplitude", 440, 1, math.NaN(), testRate},
		{"zero sample rate", 440, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Square(tt.freq, tt.dur, tt.amp, tt.rate)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			_, err = Sawtooth(tt.freq, tt.dur, tt.amp, tt.rate)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	_, err := WhiteNoise(-1, 1, testRate, NewSource(1))
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Silence(math.NaN(), testRate)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Oscillate(ShapeNoise, 0, 1, 1, testRate, nil)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestOscillatorAboveNyquistIsAccepted(t *testing.T) {
	buf, err := Square(30000, 0.01, 1, testRate)
	require.NoError(t, err)
	assert.Len(t, buf, 441)
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"square", ShapeSquare, false},
		{"Saw", ShapeSawtooth, false},
		{"sawtooth", ShapeSawtooth, false},
		{" noise ", ShapeNoise, false},
		{"silence", ShapeSilence, false},
		{"sine", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseShape(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOscillatorsRejectOversizedDuration(t *testing.T) {
	src := NewSource(1)
	for _, dur := range []float64{1e300, float64(MaxSamples)/testRate + 1} {
		_, err := Square(100, dur, 0.5, testRate)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = Sawtooth(100, dur, 0.5, testRate)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = WhiteNoise(dur, 0.5, testRate, src)
		assert.ErrorIs(t, err, ErrInvalidParameter)
		_, err = Silence(dur, testRate)
		assert.ErrorIs(t, err, ErrInvalidParameter)
	}
}
