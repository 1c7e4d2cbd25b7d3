// Package pcm writes mixed float buffers to mono WAV containers and reads
// them back.
package pcm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	// DefaultSampleRate is the output rate when none is configured.
	DefaultSampleRate = 44100

	int16Scale = 32767

	wavFormatPCM   = 1
	wavFormatFloat = 3

	numChannels = 1
	software    = "chipwave"
)

var (
	// ErrEncodingOverflow is informational: samples outside [-1, 1] were
	// saturated during integer encoding.
	ErrEncodingOverflow = errors.New("encoding overflow")

	// ErrUnsupportedFormat is returned by Decode for containers it cannot read.
	ErrUnsupportedFormat = errors.New("unsupported wav format")
)

// Encoding selects the sample representation inside the container.
type Encoding int

const (
	EncodingFloat32 Encoding = iota
	EncodingInt16
)

func (e Encoding) String() string {
	if e == EncodingInt16 {
		return "int16"
	}
	return "float32"
}

// BitDepth is the stored bits per sample.
func (e Encoding) BitDepth() int {
	if e == EncodingInt16 {
		return 16
	}
	return 32
}

func (e Encoding) wavFormat() int {
	if e == EncodingInt16 {
		return wavFormatPCM
	}
	return wavFormatFloat
}

// ParseEncoding maps config strings to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float32", "f32", "float", "32":
		return EncodingFloat32, nil
	case "int16", "s16", "pcm16", "16":
		return EncodingInt16, nil
	}
	return 0, fmt.Errorf("unknown encoding %q", s)
}

// Metadata is written as a RIFF INFO list after the sample data.
type Metadata struct {
	Title    string
	Artist   string
	Comments string
}

// Options controls the container layout.
type Options struct {
	SampleRate int
	Encoding   Encoding
	Metadata   *Metadata
}

// DefaultOptions is 44.1 kHz float32 mono.
func DefaultOptions() Options {
	return Options{SampleRate: DefaultSampleRate, Encoding: EncodingFloat32}
}

// Report summarizes an encode.
type Report struct {
	Frames   int
	Clipped  int
	Encoding Encoding
}

// Err returns a wrapped ErrEncodingOverflow when any sample was clipped.
func (r Report) Err() error {
	if r.Clipped == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d samples clipped", ErrEncodingOverflow, r.Clipped, r.Frames)
}

// QuantizeInt16 clips s to [-1, 1] and scales it to the int16 range with
// round-half-to-even. clipped reports whether saturation happened. NaN
// encodes as silence and counts as clipped.
func QuantizeInt16(s float64) (v int16, clipped bool) {
	switch {
	case math.IsNaN(s):
		return 0, true
	case s > 1:
		s, clipped = 1, true
	case s < -1:
		s, clipped = -1, true
	}
	return int16(math.RoundToEven(s * int16Scale)), clipped
}

// Encode writes samples as a mono WAV stream to w. The writer must be
// seekable so chunk sizes can be patched once the payload length is known.
func Encode(w io.WriteSeeker, samples []float64, opts Options) (Report, error) {
	if opts.SampleRate <= 0 {
		return Report{}, fmt.Errorf("invalid sample rate %d", opts.SampleRate)
	}

	report := Report{Frames: len(samples), Encoding: opts.Encoding}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  opts.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: opts.Encoding.BitDepth(),
	}

	switch opts.Encoding {
	case EncodingInt16:
		for i, s := range samples {
			v, clipped := QuantizeInt16(s)
			if clipped {
				report.Clipped++
			}
			buf.Data[i] = int(v)
		}
	case EncodingFloat32:
		// The encoder stores 32-bit values as int32; hand it the IEEE bits.
		for i, s := range samples {
			buf.Data[i] = int(int32(math.Float32bits(float32(s))))
		}
	default:
		return Report{}, fmt.Errorf("unknown encoding %d", opts.Encoding)
	}

	e := wav.NewEncoder(w, opts.SampleRate, opts.Encoding.BitDepth(), numChannels, opts.Encoding.wavFormat())
	if opts.Metadata != nil {
		e.Metadata = &wav.Metadata{
			Title:    opts.Metadata.Title,
			Artist:   opts.Metadata.Artist,
			Comments: opts.Metadata.Comments,
			Software: software,
		}
	}
	if err := e.Write(buf); err != nil {
		return report, fmt.Errorf("failed to write samples: %w", err)
	}
	if err := e.Close(); err != nil {
		return report, fmt.Errorf("failed to finalize wav: %w", err)
	}
	return report, nil
}

// EncodeBytes encodes into memory and returns the complete file.
func EncodeBytes(samples []float64, opts Options) ([]byte, Report, error) {
	var f memFile
	report, err := Encode(&f, samples, opts)
	if err != nil {
		return nil, report, err
	}
	return f.Bytes(), report, nil
}

// WriteFile encodes samples into the file at path, replacing it.
func WriteFile(path string, samples []float64, opts Options) (report Report, err error) {
	f, err := os.Create(path)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Encode(f, samples, opts)
}

// Format describes a decoded container.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Float      bool
}

// Decode reads a 16-bit integer or 32-bit float WAV stream back into
// float samples. Integer samples are divided by 32767, mirroring Encode.
func Decode(r io.ReadSeeker) ([]float64, Format, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, Format{}, fmt.Errorf("failed to read wav header: %w", err)
	}
	format := Format{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Float:      d.WavAudioFormat == wavFormatFloat,
	}
	if format.Channels < 1 {
		return nil, format, fmt.Errorf("%w: no fmt chunk", ErrUnsupportedFormat)
	}

	var convert func(int) float64
	switch {
	case format.Float && format.BitDepth == 32:
		convert = func(v int) float64 { return float64(math.Float32frombits(uint32(int32(v)))) }
	case !format.Float && format.BitDepth == 16:
		convert = func(v int) float64 { return float64(v) / int16Scale }
	default:
		return nil, format, fmt.Errorf("%w: %d-bit float=%t", ErrUnsupportedFormat, format.BitDepth, format.Float)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, format, fmt.Errorf("failed to read samples: %w", err)
	}
	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = convert(v)
	}
	return out, format, nil
}
