package synth

import (
	"fmt"
	"strings"
)

// RestPitch marks a note as a rest: silence for the note's duration.
const RestPitch = -100

// DefaultTranspose is the semitone shift applied in PitchTransposed mode.
const DefaultTranspose = 3

// DefaultMaxRenderSeconds is the per-track length ceiling of DefaultConfig.
const DefaultMaxRenderSeconds = 600

// Note is a single (pitch offset, length denominator) step of a track.
// A length of 2 is half a beat, 1 is a full beat.
type Note struct {
	Pitch  int
	Length float64
}

// NewNote validates length and returns the note.
func NewNote(pitch int, length float64) (Note, error) {
	if err := checkPositive("length", length); err != nil {
		return Note{}, err
	}
	return Note{Pitch: pitch, Length: length}, nil
}

// IsRest reports whether the note is the rest sentinel.
func (n Note) IsRest() bool {
	return n.Pitch == RestPitch
}

// Track is an ordered, monophonic note sequence.
type Track []Note

// TrackFromPairs builds a Track from [pitch, length] pairs such as
// [[26, 2], [21, 2], [-100, 1]].
func TrackFromPairs(pairs [][2]int) (Track, error) {
	track := make(Track, 0, len(pairs))
	for i, p := range pairs {
		n, err := NewNote(p[0], float64(p[1]))
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}
		track = append(track, n)
	}
	return track, nil
}

// Shape selects the oscillator used for a track.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeSawtooth
	ShapeNoise
	ShapeSilence
)

var shapeNames = map[Shape]string{
	ShapeSquare:   "square",
	ShapeSawtooth: "sawtooth",
	ShapeNoise:    "noise",
	ShapeSilence:  "silence",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ParseShape maps a config string ("square", "saw", "sawtooth", "noise",
// "silence") to a Shape.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return ShapeSquare, nil
	case "saw", "sawtooth":
		return ShapeSawtooth, nil
	case "noise", "white_noise":
		return ShapeNoise, nil
	case "silence":
		return ShapeSilence, nil
	}
	return 0, fmt.Errorf("%w: unknown shape %q", ErrInvalidParameter, s)
}

// PitchMode controls how a pitch offset maps to a frequency.
type PitchMode int

const (
	// PitchAbsolute uses the raw offset.
	PitchAbsolute PitchMode = iota
	// PitchTransposed adds Config.Transpose semitones before exponentiation.
	PitchTransposed
)

func (m PitchMode) String() string {
	if m == PitchTransposed {
		return "transposed"
	}
	return "absolute"
}

// ParsePitchMode maps "absolute" or "transposed" to a PitchMode.
func ParsePitchMode(s string) (PitchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "absolute":
		return PitchAbsolute, nil
	case "transposed":
		return PitchTransposed, nil
	}
	return 0, fmt.Errorf("%w: unknown pitch mode %q", ErrInvalidParameter, s)
}

// TrackConfig is the per-track voice: oscillator shape and amplitude.
type TrackConfig struct {
	Shape     Shape
	Amplitude float64
}

// Config holds every synthesis parameter. Nothing in the engine falls back
// to an implicit value; start from DefaultConfig and override.
type Config struct {
	TempoBPM        float64
	BaseFrequencyHz float64
	SampleRateHz    int
	PitchMode       PitchMode
	Transpose       int

	Melody TrackConfig
	Base   TrackConfig
	Base2  TrackConfig
	Noise  TrackConfig

	// NoiseSeed seeds the Source used for the noise track of a render.
	NoiseSeed uint64

	// MaxRenderSeconds caps the length of every track in a render.
	// Zero disables the ceiling.
	MaxRenderSeconds float64
}

// DefaultConfig returns the classic voice set: sawtooth lead, two square
// accompaniment lines and full-scale noise at 120 BPM over a 100 Hz base.
func DefaultConfig() Config {
	return Config{
		TempoBPM:         120,
		BaseFrequencyHz:  100,
		SampleRateHz:     44100,
		PitchMode:        PitchAbsolute,
		Transpose:        DefaultTranspose,
		Melody:           TrackConfig{Shape: ShapeSawtooth, Amplitude: 0.5},
		Base:             TrackConfig{Shape: ShapeSquare, Amplitude: 0.4},
		Base2:            TrackConfig{Shape: ShapeSquare, Amplitude: 0.4},
		Noise:            TrackConfig{Shape: ShapeNoise, Amplitude: 1.0},
		NoiseSeed:        1,
		MaxRenderSeconds: DefaultMaxRenderSeconds,
	}
}

// Validate checks the global parameters shared by all tracks.
func (c Config) Validate() error {
	if err := checkPositive("tempo_bpm", c.TempoBPM); err != nil {
		return err
	}
	if err := checkPositive("base_frequency_hz", c.BaseFrequencyHz); err != nil {
		return err
	}
	if c.SampleRateHz <= 0 {
		return invalidParam("sample_rate_hz", float64(c.SampleRateHz))
	}
	voices := []struct {
		name string
		tc   TrackConfig
	}{
		{"melody", c.Melody},
		{"base", c.Base},
		{"base2", c.Base2},
		{"noise", c.Noise},
	}
	for _, v := range voices {
		if err := checkNonNegative(v.name+".amplitude", v.tc.Amplitude); err != nil {
			return err
		}
	}
	if err := checkNonNegative("max_render_seconds", c.MaxRenderSeconds); err != nil {
		return err
	}
	return checkSampleCount(c.MaxRenderSeconds, c.SampleRateHz)
}

// MaxRenderSamples is the per-track sample ceiling, or 0 when unlimited.
func (c Config) MaxRenderSamples() int {
	return SampleCount(c.MaxRenderSeconds, c.SampleRateHz)
}
