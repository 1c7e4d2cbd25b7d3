package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

// RenderTableRequest is the literal-table render input
type RenderTableRequest struct {
	Melody [][2]int       `json:"melody"`
	Base   [][2]int       `json:"base"`
	Base2  [][2]int       `json:"base2"`
	Noise  NoiseInput     `json:"noise"`
	BPM    float64        `json:"bpm" binding:"required"`
	Opts   *RenderOptions `json:"options,omitempty"`
}

// RenderOptions overrides server defaults for one render
type RenderOptions struct {
	SongName        string   `json:"song_name,omitempty"`
	Encoding        string   `json:"encoding,omitempty"`   // "float32" or "int16"
	PitchMode       string   `json:"pitch_mode,omitempty"` // "absolute" or "transposed"
	Transpose       *int     `json:"transpose,omitempty"`
	BaseFrequencyHz *float64 `json:"base_frequency_hz,omitempty"`
	NoiseSeed       *uint64  `json:"noise_seed,omitempty"`
}

// NoiseInput carries exactly one of the two ambience encodings:
// {"durations": [noise, silence, ...]} in seconds, or
// {"steps": [[marker, length], ...]} where a null or -100 marker is silence.
type NoiseInput struct {
	Durations []float64   `json:"durations,omitempty"`
	Steps     []NoiseStep `json:"steps,omitempty"`
}

// NoiseStep is one [marker, length] pair
type NoiseStep struct {
	Marker *int
	Length float64
}

func (s *NoiseStep) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("noise step must be a [marker, length] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("noise step must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &s.Marker); err != nil {
		return fmt.Errorf("noise step marker: %w", err)
	}
	if err := json.Unmarshal(pair[1], &s.Length); err != nil {
		return fmt.Errorf("noise step length: %w", err)
	}
	return nil
}

func (s NoiseStep) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{s.Marker, s.Length})
}

// ErrNoiseInput is returned when a NoiseInput sets neither or both encodings
var ErrNoiseInput = errors.New("noise must set exactly one of durations or steps")

// NoiseSpec resolves the input to the engine's tagged variant
func (n NoiseInput) NoiseSpec() (synth.NoiseSpec, error) {
	switch {
	case n.Durations != nil && n.Steps == nil:
		return synth.DurationPairs(n.Durations...), nil
	case n.Steps != nil && n.Durations == nil:
		steps := make([]synth.NoiseStep, len(n.Steps))
		for i, s := range n.Steps {
			rest := s.Marker == nil || *s.Marker == synth.RestPitch
			steps[i] = synth.NoiseStep{Rest: rest, Length: s.Length}
		}
		return synth.TempoSteps(steps...), nil
	}
	return synth.NoiseSpec{}, ErrNoiseInput
}

// Tracks converts the three pair lists to engine tracks
func (r RenderTableRequest) Tracks() (melody, base, base2 synth.Track, err error) {
	if melody, err = synth.TrackFromPairs(r.Melody); err != nil {
		return nil, nil, nil, fmt.Errorf("melody: %w", err)
	}
	if base, err = synth.TrackFromPairs(r.Base); err != nil {
		return nil, nil, nil, fmt.Errorf("base: %w", err)
	}
	if base2, err = synth.TrackFromPairs(r.Base2); err != nil {
		return nil, nil, nil, fmt.Errorf("base2: %w", err)
	}
	return melody, base, base2, nil
}

// RenderErrorResponse is returned for failed renders
type RenderErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Line      int    `json:"line,omitempty"`
	Text      string `json:"text,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}
