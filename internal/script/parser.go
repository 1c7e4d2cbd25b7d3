// Package script parses sectioned note scripts into tracks.
//
// A script looks like:
//
//	[melody]
//	26,2
//	21,2
//	[base]
//	18,2
//
// Each data line is a "pitch,length" pair appended to the current section.
package script

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

// Section names recognised by the parser.
const (
	SectionMelody = "melody"
	SectionBase   = "base"
	SectionBase2  = "base2"
)

// maxLineBytes bounds a single script line.
const maxLineBytes = 64 * 1024

// ErrParse is wrapped by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports the offending line of a script.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// Score holds the three melodic tracks of a script. Absent sections stay empty.
type Score struct {
	Melody synth.Track
	Base   synth.Track
	Base2  synth.Track
}

// NoteCount is the total number of notes across all tracks.
func (s Score) NoteCount() int {
	return len(s.Melody) + len(s.Base) + len(s.Base2)
}

// ParseBytes parses a script held in memory.
func ParseBytes(data []byte) (Score, error) {
	return Parse(bytes.NewReader(data))
}

// Parse reads a script from r. Lines before the first header and lines
// under unknown sections are ignored. A malformed data line aborts with
// a *ParseError.
func Parse(r io.Reader) (Score, error) {
	var score Score
	var current *synth.Track
	skipping := true

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if name, ok := sectionHeader(line); ok {
			current, skipping = score.section(name)
			continue
		}
		if skipping {
			continue
		}

		note, err := parseNote(line)
		if err != nil {
			return Score{}, &ParseError{Line: lineNo, Text: raw, Err: err}
		}
		*current = append(*current, note)
	}
	if err := scanner.Err(); err != nil {
		return Score{}, &ParseError{Line: lineNo + 1, Err: err}
	}
	return score, nil
}

func (s *Score) section(name string) (*synth.Track, bool) {
	switch strings.ToLower(name) {
	case SectionMelody:
		return &s.Melody, false
	case SectionBase:
		return &s.Base, false
	case SectionBase2:
		return &s.Base2, false
	}
	return nil, true
}

func sectionHeader(line string) (string, bool) {
	if len(line) < 2 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}
	return strings.TrimSpace(line[1 : len(line)-1]), true
}

func parseNote(line string) (synth.Note, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return synth.Note{}, fmt.Errorf("want 2 comma-separated fields, got %d", len(fields))
	}
	pitch, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return synth.Note{}, fmt.Errorf("pitch: %w", err)
	}
	length, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return synth.Note{}, fmt.Errorf("length: %w", err)
	}
	return synth.NewNote(pitch, float64(length))
}

// Format writes score back in script form. Parse(Format(s)) reproduces s
// for integer note lengths.
func Format(w io.Writer, s Score) error {
	bw := bufio.NewWriter(w)
	for _, sec := range []struct {
		name  string
		track synth.Track
	}{
		{SectionMelody, s.Melody},
		{SectionBase, s.Base},
		{SectionBase2, s.Base2},
	} {
		if len(sec.track) == 0 {
			continue
		}
		fmt.Fprintf(bw, "[%s]\n", sec.name)
		for _, n := range sec.track {
			fmt.Fprintf(bw, "%d,%s\n", n.Pitch, strconv.FormatFloat(n.Length, 'f', -1, 64))
		}
	}
	return bw.Flush()
}
