package synth

import (
	"fmt"
	"math"
)

// Buffer is a run of mono samples at the render sample rate.
type Buffer []float64

// MaxSamples bounds any single buffer the engine will allocate.
const MaxSamples = math.MaxInt32

// SampleCount is floor(sampleRate * duration). Truncation keeps
// concatenated notes from accumulating rounding drift. Callers validate
// the duration with checkSampleCount first.
func SampleCount(durationSec float64, sampleRateHz int) int {
	return int(math.Floor(float64(sampleRateHz) * durationSec))
}

func checkSampleCount(durationSec float64, sampleRateHz int) error {
	if float64(sampleRateHz)*durationSec > MaxSamples {
		return fmt.Errorf("%w: duration_sec=%v exceeds %d samples at %d Hz",
			ErrInvalidParameter, durationSec, MaxSamples, sampleRateHz)
	}
	return nil
}

func checkOsc(freq, dur, amp float64, sampleRateHz int) error {
	if err := checkNonNegative("frequency_hz", freq); err != nil {
		return err
	}
	if err := checkNonNegative("duration_sec", dur); err != nil {
		return err
	}
	if err := checkNonNegative("amplitude", amp); err != nil {
		return err
	}
	if sampleRateHz <= 0 {
		return invalidParam("sample_rate_hz", float64(sampleRateHz))
	}
	return checkSampleCount(dur, sampleRateHz)
}

// Square returns amplitude * sign(sin(2πft)). Samples land on {-a, 0, a}.
func Square(freq, dur, amp float64, sampleRateHz int) (Buffer, error) {
	if err := checkOsc(freq, dur, amp, sampleRateHz); err != nil {
		return nil, err
	}
	n := SampleCount(dur, sampleRateHz)
	buf := make(Buffer, n)
	sr := float64(sampleRateHz)
	for i := range buf {
		s := math.Sin(2 * math.Pi * freq * float64(i) / sr)
		switch {
		case s > 0:
			buf[i] = amp
		case s < 0:
			buf[i] = -amp
		}
	}
	return buf, nil
}

// Sawtooth returns a rising -a..a ramp restarting every period.
func Sawtooth(freq, dur, amp float64, sampleRateHz int) (Buffer, error) {
	if err := checkOsc(freq, dur, amp, sampleRateHz); err != nil {
		return nil, err
	}
	n := SampleCount(dur, sampleRateHz)
	buf := make(Buffer, n)
	sr := float64(sampleRateHz)
	for i := range buf {
		_, phase := math.Modf(freq * float64(i) / sr)
		buf[i] = amp * (2*phase - 1)
	}
	return buf, nil
}

// WhiteNoise draws uniform samples in [-a, a) from src.
func WhiteNoise(dur, amp float64, sampleRateHz int, src Source) (Buffer, error) {
	if err := checkOsc(0, dur, amp, sampleRateHz); err != nil {
		return nil, err
	}
	n := SampleCount(dur, sampleRateHz)
	buf := make(Buffer, n)
	for i := range buf {
		buf[i] = amp * (src.Float64()*2 - 1)
	}
	return buf, nil
}

// Silence returns a zeroed buffer of the requested duration.
func Silence(dur float64, sampleRateHz int) (Buffer, error) {
	if err := checkOsc(0, dur, 0, sampleRateHz); err != nil {
		return nil, err
	}
	return make(Buffer, SampleCount(dur, sampleRateHz)), nil
}

// Oscillate dispatches to the generator for shape. src is only read for
// ShapeNoise and may be nil otherwise.
func Oscillate(shape Shape, freq, dur, amp float64, sampleRateHz int, src Source) (Buffer, error) {
	switch shape {
	case ShapeSquare:
		return Square(freq, dur, amp, sampleRateHz)
	case ShapeSawtooth:
		return Sawtooth(freq, dur, amp, sampleRateHz)
	case ShapeNoise:
		if src == nil {
			return nil, fmt.Errorf("%w: noise shape needs a source", ErrInvalidParameter)
		}
		return WhiteNoise(dur, amp, sampleRateHz, src)
	case ShapeSilence:
		return Silence(dur, sampleRateHz)
	}
	return nil, fmt.Errorf("%w: unknown shape %v", ErrInvalidParameter, shape)
}
