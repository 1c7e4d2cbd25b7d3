package synth

import (
	"fmt"
	"math"
)

// NoteDuration converts a length denominator to seconds: 60 / bpm / length.
func NoteDuration(tempoBPM, length float64) (float64, error) {
	if err := checkPositive("tempo_bpm", tempoBPM); err != nil {
		return 0, err
	}
	if err := checkPositive("length", length); err != nil {
		return 0, err
	}
	return 60 / tempoBPM / length, nil
}

// NoteFrequency maps a pitch offset to Hz under the config's pitch mode.
func NoteFrequency(pitch int, cfg Config) float64 {
	offset := pitch
	if cfg.PitchMode == PitchTransposed {
		offset += cfg.Transpose
	}
	return cfg.BaseFrequencyHz * math.Pow(2, float64(offset)/12)
}

// ExpectedTrackLength is the sample count RenderTrack produces for track.
// It allocates nothing, so callers can enforce a length ceiling up front.
func ExpectedTrackLength(track Track, cfg Config) (int, error) {
	total := 0
	for i, n := range track {
		dur, err := NoteDuration(cfg.TempoBPM, n.Length)
		if err != nil {
			return 0, fmt.Errorf("note %d: %w", i, err)
		}
		if total, err = addSamples(total, dur, cfg.SampleRateHz); err != nil {
			return 0, fmt.Errorf("note %d: %w", i, err)
		}
	}
	return total, nil
}

// addSamples adds the sample count of dur to total, keeping both under MaxSamples.
func addSamples(total int, dur float64, sampleRateHz int) (int, error) {
	if err := checkSampleCount(dur, sampleRateHz); err != nil {
		return 0, err
	}
	total += SampleCount(dur, sampleRateHz)
	if total > MaxSamples {
		return 0, fmt.Errorf("%w: track exceeds %d samples", ErrInvalidParameter, MaxSamples)
	}
	return total, nil
}

// RenderTrack synthesizes every note of track with the voice tc and
// concatenates the segments in order. Each note starts its oscillator at
// phase zero; there is no smoothing across note boundaries. src is only
// consulted when tc.Shape is ShapeNoise.
func RenderTrack(track Track, tc TrackConfig, cfg Config, src Source) (Buffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkNonNegative("amplitude", tc.Amplitude); err != nil {
		return nil, err
	}

	expected, err := ExpectedTrackLength(track, cfg)
	if err != nil {
		return nil, err
	}
	out := make(Buffer, 0, expected)

	for i, n := range track {
		dur, err := NoteDuration(cfg.TempoBPM, n.Length)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}

		var seg Buffer
		if n.IsRest() {
			seg, err = Silence(dur, cfg.SampleRateHz)
		} else {
			freq := NoteFrequency(n.Pitch, cfg)
			// Extreme offsets underflow to 0 Hz or overflow to +Inf.
			if err := checkPositive("frequency_hz", freq); err != nil {
				return nil, fmt.Errorf("note %d (pitch %d): %w", i, n.Pitch, err)
			}
			seg, err = Oscillate(tc.Shape, freq, dur, tc.Amplitude, cfg.SampleRateHz, src)
		}
		if err != nil {
			return nil, fmt.Errorf("note %d (pitch %d): %w", i, n.Pitch, err)
		}
		out = append(out, seg...)
	}
	return out, nil
}
