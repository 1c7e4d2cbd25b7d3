package synth

import "fmt"

// MixReport describes how Mixdown aligned its inputs.
type MixReport struct {
	Length       int
	TrackLengths []int
	Mismatch     bool
}

// Err returns a wrapped ErrTrackLengthMismatch when inputs had different
// lengths. It is a diagnostic, never a mix failure.
func (r MixReport) Err() error {
	if !r.Mismatch {
		return nil
	}
	return fmt.Errorf("%w: lengths %v truncated to %d", ErrTrackLengthMismatch, r.TrackLengths, r.Length)
}

// Mixdown truncates every buffer to the shortest one and sums them sample by
// sample. The output is not normalized or clipped.
func Mixdown(buffers ...Buffer) (Buffer, MixReport) {
	report := MixReport{TrackLengths: make([]int, len(buffers))}
	if len(buffers) == 0 {
		return Buffer{}, report
	}

	minLen := len(buffers[0])
	for i, b := range buffers {
		report.TrackLengths[i] = len(b)
		if len(b) != minLen {
			report.Mismatch = true
		}
		if len(b) < minLen {
			minLen = len(b)
		}
	}
	report.Length = minLen

	out := make(Buffer, minLen)
	for _, b := range buffers {
		for i, s := range b[:minLen] {
			out[i] += s
		}
	}
	return out, report
}
