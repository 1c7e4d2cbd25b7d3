package script

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

func notes(pairs ...[2]int) synth.Track {
	t := synth.Track{}
	for _, p := range pairs {
		t = append(t, synth.Note{Pitch: p[0], Length: float64(p[1])})
	}
	return t
}

func TestParseSections(t *testing.T) {
	score, err := ParseBytes([]byte("[melody]\n26,2\n21,2\n[base]\n18,2\n"))
	require.NoError(t, err)

	assert.Equal(t, notes([2]int{26, 2}, [2]int{21, 2}), score.Melody)
	assert.Equal(t, notes([2]int{18, 2}), score.Base)
	assert.Empty(t, score.Base2)
	assert.Equal(t, 3, score.NoteCount())
}

func TestParseTolerantLayout(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		melody synth.Track
		base2  synth.Track
	}{
		{
			name:   "blank lines and padding",
			input:  "\n  [melody]  \n\n 26 , 2 \n\r\n-100,1\r\n",
			melody: notes([2]int{26, 2}, [2]int{-100, 1}),
		},
		{
			name:   "unknown section dropped",
			input:  "[drums]\n1,2\nnot even numbers\n[base2]\n5,4\n",
			base2:  notes([2]int{5, 4}),
			melody: nil,
		},
		{
			name:  "lines before any header ignored",
			input: "title: demo\n[base2]\n-3,1\n",
			base2: notes([2]int{-3, 1}),
		},
		{
			name:   "section reopened appends",
			input:  "[melody]\n1,1\n[base]\n2,1\n[melody]\n3,1\n",
			melody: notes([2]int{1, 1}, [2]int{3, 1}),
		},
		{
			name:   "header case insensitive",
			input:  "[Melody]\n4,8\n",
			melody: notes([2]int{4, 8}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			if tt.melody == nil {
				assert.Empty(t, score.Melody)
			} else {
				assert.Equal(t, tt.melody, score.Melody)
			}
			if tt.base2 == nil {
				assert.Empty(t, score.Base2)
			} else {
				assert.Equal(t, tt.base2, score.Base2)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	score, err := ParseBytes(nil)
	require.NoError(t, err)
	assert.Zero(t, score.NoteCount())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantText string
	}{
		{"non-integer token", "[melody]\n26,2\n26,x\n", 3, "26,x"},
		{"too few fields", "[base]\n18\n", 2, "18"},
		{"too many fields", "[base]\n1,2,3\n", 2, "1,2,3"},
		{"float pitch", "[base2]\n\n1.5,2\n", 3, "1.5,2"},
		{"zero length", "[melody]\n0,0\n", 2, "0,0"},
		{"negative length", "[melody]\n0,-2\n", 2, "0,-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.wantLine, perr.Line)
			assert.Equal(t, tt.wantText, perr.Text)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestParseLengthErrorIsInvalidParameter(t *testing.T) {
	_, err := ParseBytes([]byte("[melody]\n3,0\n"))
	assert.ErrorIs(t, err, synth.ErrInvalidParameter)
}

func TestFormatRoundTrip(t *testing.T) {
	in := Score{
		Melody: notes([2]int{26, 2}, [2]int{synth.RestPitch, 4}),
		Base2:  notes([2]int{-7, 1}),
	}

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, in))
	assert.Equal(t, "[melody]\n26,2\n-100,4\n[base2]\n-7,1\n", buf.String())

	out, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Melody, out.Melody)
	assert.Empty(t, out.Base)
	assert.Equal(t, in.Base2, out.Base2)
}
