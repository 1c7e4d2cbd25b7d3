package synth

import "fmt"

// NoiseKind tags which timeline encoding a NoiseSpec carries.
type NoiseKind int

const (
	// NoiseDurationPairs alternates noise and silence lengths in seconds.
	NoiseDurationPairs NoiseKind = iota
	// NoiseTempoSteps lists (marker, length) steps timed like notes.
	NoiseTempoSteps
)

// NoiseStep is one tempo-relative step of the ambience track.
// Rest steps are silent, all others are noise.
type NoiseStep struct {
	Rest   bool
	Length float64
}

// NoiseSpec is the ambience timeline. Only the field matching Kind is used.
type NoiseSpec struct {
	Kind      NoiseKind
	Durations []float64
	Steps     []NoiseStep
}

// DurationPairs builds a NoiseSpec from [noise, silence, noise, silence, ...]
// seconds. An odd count ends on noise followed by a zero-length silence.
func DurationPairs(seconds ...float64) NoiseSpec {
	return NoiseSpec{Kind: NoiseDurationPairs, Durations: append([]float64(nil), seconds...)}
}

// TempoSteps builds a tempo-relative NoiseSpec.
func TempoSteps(steps ...NoiseStep) NoiseSpec {
	return NoiseSpec{Kind: NoiseTempoSteps, Steps: append([]NoiseStep(nil), steps...)}
}

// ExpectedNoiseLength is the sample count RenderNoise produces for spec,
// computed without allocating.
func ExpectedNoiseLength(spec NoiseSpec, cfg Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	total := 0
	add := func(dur float64) error {
		if err := checkNonNegative("duration_sec", dur); err != nil {
			return err
		}
		var err error
		total, err = addSamples(total, dur, cfg.SampleRateHz)
		return err
	}

	switch spec.Kind {
	case NoiseDurationPairs:
		for i, d := range spec.Durations {
			if err := add(d); err != nil {
				return 0, fmt.Errorf("noise pair %d: %w", i/2, err)
			}
		}
	case NoiseTempoSteps:
		for i, step := range spec.Steps {
			dur, err := NoteDuration(cfg.TempoBPM, step.Length)
			if err != nil {
				return 0, fmt.Errorf("noise step %d: %w", i, err)
			}
			if err := add(dur); err != nil {
				return 0, fmt.Errorf("noise step %d: %w", i, err)
			}
		}
	default:
		return 0, fmt.Errorf("%w: unknown noise kind %d", ErrInvalidParameter, spec.Kind)
	}
	return total, nil
}

// RenderNoise builds the ambience track. Noise segments use tc.Amplitude and
// draw from src.
func RenderNoise(spec NoiseSpec, tc TrackConfig, cfg Config, src Source) (Buffer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: noise track needs a source", ErrInvalidParameter)
	}

	var out Buffer
	emit := func(noise bool, dur float64) error {
		var seg Buffer
		var err error
		if noise {
			seg, err = WhiteNoise(dur, tc.Amplitude, cfg.SampleRateHz, src)
		} else {
			seg, err = Silence(dur, cfg.SampleRateHz)
		}
		if err != nil {
			return err
		}
		out = append(out, seg...)
		return nil
	}

	switch spec.Kind {
	case NoiseDurationPairs:
		for i := 0; i < len(spec.Durations); i += 2 {
			silence := 0.0
			if i+1 < len(spec.Durations) {
				silence = spec.Durations[i+1]
			}
			if err := emit(true, spec.Durations[i]); err != nil {
				return nil, fmt.Errorf("noise pair %d: %w", i/2, err)
			}
			if err := emit(false, silence); err != nil {
				return nil, fmt.Errorf("noise pair %d: %w", i/2, err)
			}
		}
	case NoiseTempoSteps:
		for i, step := range spec.Steps {
			dur, err := NoteDuration(cfg.TempoBPM, step.Length)
			if err != nil {
				return nil, fmt.Errorf("noise step %d: %w", i, err)
			}
			if err := emit(!step.Rest, dur); err != nil {
				return nil, fmt.Errorf("noise step %d: %w", i, err)
			}
		}
	default:
		return nil, fmt.Errorf("%w: unknown noise kind %d", ErrInvalidParameter, spec.Kind)
	}

	if out == nil {
		out = Buffer{}
	}
	return out, nil
}
