package embedded

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chipwave/internal/script"
	"github.com/Conceptual-Machines/chipwave/internal/synth"
)

func TestDemoScriptParses(t *testing.T) {
	score, err := script.ParseBytes(DemoScript)
	require.NoError(t, err)

	assert.Len(t, score.Melody, 97)
	assert.Len(t, score.Base, 122)
	assert.Len(t, score.Base2, 128)
	assert.Equal(t, synth.Note{Pitch: 26, Length: 2}, score.Melody[0])
	assert.True(t, score.Melody[len(score.Melody)-1].IsRest())
}

func TestDemoVoicesLineUp(t *testing.T) {
	score, err := script.ParseBytes(DemoScript)
	require.NoError(t, err)

	cfg := synth.DefaultConfig()
	cfg.TempoBPM = DemoBPM

	var lengths []int
	for _, track := range []synth.Track{score.Melody, score.Base, score.Base2} {
		n, err := synth.ExpectedTrackLength(track, cfg)
		require.NoError(t, err)
		lengths = append(lengths, n)
	}
	assert.Equal(t, []int{846720, 846720, 846720}, lengths)
}
