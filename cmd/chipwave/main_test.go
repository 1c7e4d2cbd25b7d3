package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{"script path", []string{"-bpm", "150", "song.txt"}, false, func(t *testing.T, o options) {
			assert.Equal(t, 150.0, o.bpm)
			assert.Equal(t, "song.txt", o.input)
			assert.Equal(t, "output.wav", o.out)
			assert.Equal(t, "absolute", o.mode)
		}},
		{"demo", []string{"-demo", "-o", "x.wav"}, false, func(t *testing.T, o options) {
			assert.True(t, o.demo)
			assert.Equal(t, "x.wav", o.out)
		}},
		{"no input", nil, true, nil},
		{"demo with script", []string{"-demo", "song.txt"}, true, nil},
		{"two scripts", []string{"a.txt", "b.txt"}, true, nil},
		{"unknown flag", []string{"-loud", "a.txt"}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, &bytes.Buffer{})
			if tt.wantErr {
				assert.ErrorIs(t, err, errUsage)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestParseNoise(t *testing.T) {
	spec, err := parseNoise("0.5, 1,0.25")
	require.NoError(t, err)
	assert.Equal(t, synth.DurationPairs(0.5, 1, 0.25), spec)

	_, err = parseNoise("0.5,soon")
	assert.Error(t, err)
}

func TestRunScript(t *testing.T) {
	t.Setenv("CHIPWAVE_SAMPLE_RATE", "1000")
	t.Setenv("CHIPWAVE_ENCODING", "")

	dir := t.TempDir()
	in := filepath.Join(dir, "tune.txt")
	require.NoError(t, os.WriteFile(in, []byte("[melody]\n0,1\n[base]\n0,1\n[base2]\n0,1\n"), 0o644))
	out := filepath.Join(dir, "tune.wav")

	err := run(context.Background(), []string{"-bpm", "60", "-encoding", "int16", "-noise", "2", "-o", out, in}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.True(t, bytes.Contains(data, []byte("tune")))

	// Header plus one beat of 16-bit samples at 1 kHz, then the INFO list.
	assert.Greater(t, len(data), 44+2*1000)
	assert.Equal(t, uint16(1), uint16(data[20])|uint16(data[21])<<8, "PCM format")
	assert.Equal(t, uint32(2*1000), uint32(data[40])|uint32(data[41])<<8|uint32(data[42])<<16|uint32(data[43])<<24)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("[melody]\n1,x\n"), 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{filepath.Join(dir, "nope.txt")}},
		{"parse error", []string{"-o", filepath.Join(dir, "o.wav"), bad}},
		{"bad mode", []string{"-mode", "sideways", bad}},
		{"bad encoding", []string{"-encoding", "mp3", bad}},
		{"bad noise", []string{"-noise", "x", bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(context.Background(), tt.args, &bytes.Buffer{}))
		})
	}
}

func TestRunDemo(t *testing.T) {
	t.Setenv("CHIPWAVE_SAMPLE_RATE", "8000")
	out := filepath.Join(t.TempDir(), "demo.wav")

	require.NoError(t, run(context.Background(), []string{"-demo", "-encoding", "float32", "-o", out}, &bytes.Buffer{}))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(data), 44)
	assert.Equal(t, "WAVE", string(data[8:12]))

	// The voices last 19.2 s at 200 bpm and the ambience runs longer, so the
	// mix is 19.2 s of 32-bit samples at 8 kHz.
	dataSize := uint32(data[40]) | uint32(data[41])<<8 | uint32(data[42])<<16 | uint32(data[43])<<24
	assert.Equal(t, uint32(4*153600), dataSize)
}
