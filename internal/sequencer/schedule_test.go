package sequencer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/notation"
	"github.com/cbegin/fluentscore-go/internal/score"
)

func mustParse(t testing.TB, text string) *score.Score {
	t.Helper()
	s, err := notation.NewParser(notation.DefaultParserConfig(), names.Default()).Parse(text)
	require.NoError(t, err)
	return s
}

// onsets lists, per channel, the slots where notes start.
func onsets(s Schedule) map[int][]int {
	out := map[int][]int{}
	for _, slot := range s.Slots {
		for _, a := range slot.Actions {
			out[a.Channel] = append(out[a.Channel], slot.Index)
		}
	}
	return out
}

func TestQuantizeAlignsCoarseAndFineChannels(t *testing.T) {
	s := mustParse(t, "A:Piano [C/2 C/2]\nB:Guitar [C C C C]")
	sched, err := Quantize(s.Measures[0], s.BeatsPerMeasure, s.BeatSize)
	require.NoError(t, err)
	assert.Equal(t, 4, sched.SmallestUnit)
	assert.Equal(t, 4, sched.Quantiles)
	require.Len(t, sched.Slots, 4)
	assert.Equal(t, map[int][]int{0: {0, 2}, 1: {0, 1, 2, 3}}, onsets(sched))
	// Within a slot actions keep section order.
	assert.Equal(t, 0, sched.Slots[0].Actions[0].Channel)
	assert.Equal(t, 1, sched.Slots[0].Actions[1].Channel)
}

func TestQuantizeDottedNotes(t *testing.T) {
	s := mustParse(t, "[C/4. C/8 C/2]")
	sched, err := Quantize(s.Measures[0], s.BeatsPerMeasure, s.BeatSize)
	require.NoError(t, err)
	assert.Equal(t, 8, sched.SmallestUnit)
	assert.Equal(t, 8, sched.Quantiles)
	assert.Equal(t, map[int][]int{0: {0, 3, 4}}, onsets(sched))
}

func TestQuantizeDoubleDottedAndCompoundMeter(t *testing.T) {
	s := mustParse(t, "(90) 6/8\n[C/4.. C/16 C/16 C/8]")
	sched, err := Quantize(s.Measures[0], s.BeatsPerMeasure, s.BeatSize)
	require.NoError(t, err)
	assert.Equal(t, 16, sched.SmallestUnit)
	assert.Equal(t, 12, sched.Quantiles)
	assert.Equal(t, map[int][]int{0: {0, 8, 9, 10}}, onsets(sched))
}

func TestQuantizeSkipsVocalSections(t *testing.T) {
	s := mustParse(t, "V1: a.wav\nVocal [V1/32 _/32 _/16 _/8 _/4 _/2]\nPiano [C/2 C/2]")
	sched, err := Quantize(s.Measures[0], s.BeatsPerMeasure, s.BeatSize)
	require.NoError(t, err)
	// The vocal 1/32 does not refine the grid.
	assert.Equal(t, 4, sched.Quantiles)
	assert.Equal(t, map[int][]int{1: {0, 2}}, onsets(sched))
}

func TestQuantizeVocalOnlyMeasure(t *testing.T) {
	s := mustParse(t, "V1: a.wav\nVocal [V1/1]")
	sched, err := Quantize(s.Measures[0], s.BeatsPerMeasure, s.BeatSize)
	require.NoError(t, err)
	assert.Equal(t, 4, sched.Quantiles)
	for _, slot := range sched.Slots {
		assert.Empty(t, slot.Actions)
	}
}

func TestQuantizeRejectsOverrun(t *testing.T) {
	m := score.Measure{Sections: []score.Section{{Notes: []score.Note{
		{Pitches: []score.NotePitch{{Pitch: 60}}, Duration: 1},
		{Pitches: []score.NotePitch{{Pitch: 60}}, Duration: 4},
	}}}}
	_, err := Quantize(m, 4, 4)
	assert.Error(t, err)
}

func TestAssignChannels(t *testing.T) {
	m := score.Measure{}
	for i := 0; i < 10; i++ {
		m.Sections = append(m.Sections, score.Section{Instrument: names.AcousticGrandPiano})
	}
	m.Sections = append(m.Sections,
		score.Section{Instrument: names.StandardDrumKit},
		score.Section{Instrument: names.Vocal},
	)
	channels, err := AssignChannels(m)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 10, names.DrumChannel, -1}, channels)

	m = score.Measure{}
	for i := 0; i < 16; i++ {
		m.Sections = append(m.Sections, score.Section{Instrument: names.AcousticGrandPiano})
	}
	_, err = AssignChannels(m)
	assert.True(t, errors.Is(err, ErrTooManyChannels))
}

func TestProgramForDrumKits(t *testing.T) {
	assert.Equal(t, 24, ProgramFor(24))
	assert.Equal(t, 25, ProgramFor(names.TR808DrumKit))
	assert.Equal(t, 0, ProgramFor(names.StandardDrumKit))
}
