package synth

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter is returned for negative or non-finite durations,
	// frequencies, amplitudes, tempos and sample rates.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrTrackLengthMismatch is informational: Mixdown truncates instead of failing.
	ErrTrackLengthMismatch = errors.New("track length mismatch")
)

func invalidParam(name string, value float64) error {
	return fmt.Errorf("%w: %s=%v", ErrInvalidParameter, name, value)
}

// checkNonNegative rejects NaN, ±Inf and negative values.
func checkNonNegative(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return invalidParam(name, value)
	}
	return nil
}

// checkPositive rejects NaN, ±Inf, zero and negative values.
func checkPositive(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return invalidParam(name, value)
	}
	return nil
}
