package notation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
)

func requireBeatsBalanced(t *testing.T, s *score.Score) {
	t.Helper()
	for i, m := range s.Measures {
		for _, sec := range m.Sections {
			assert.InDelta(t, float64(s.BeatsPerMeasure), sec.BeatCount(s.BeatSize), 1e-9, "measure %d group %s", i, sec.GroupName)
		}
	}
}

func TestClassify(t *testing.T) {
	p := newTestParser()
	cases := []struct {
		name string
		text string
		want Mode
	}{
		{"loose", "C D E F", Loose},
		{"loose ignores colon", "# a: b\nC D E F", Loose},
		{"single", "[C D E F]\n[G G G G]", SingleInstrument},
		{"single bare instrument", "Guitar [C D E F]", SingleInstrument},
		{"multi by colon", "Lead:Piano [C D E F]", MultiInstrument},
		{"multi by vocal decl", "V1: a.wav\nVocal [V1/1]", MultiInstrument},
		{"multi by sentinel", "Mode: Multi-Instrument\nPiano [C D E F]", MultiInstrument},
		{"sentinel is case-insensitive", "mode: multi-instrument\nPiano [C D E F]", MultiInstrument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Classify(tc.text))
		})
	}
}

func TestHeader(t *testing.T) {
	s, err := newTestParser().Parse("(90) 3/4 [C D E]\n[F/2.]")
	require.NoError(t, err)
	assert.Equal(t, 90, s.BPM)
	assert.Equal(t, 3, s.BeatsPerMeasure)
	assert.Equal(t, 4, s.BeatSize)
	require.Len(t, s.Measures, 2)
	requireBeatsBalanced(t, s)
}

func TestHeaderDefaults(t *testing.T) {
	s, err := newTestParser().Parse("[C D E F]")
	require.NoError(t, err)
	assert.Equal(t, 120, s.BPM)
	assert.Equal(t, 4, s.BeatsPerMeasure)
	assert.Equal(t, 4, s.BeatSize)
	assert.NotNil(t, s.Vocals)
}

func TestHeaderErrors(t *testing.T) {
	p := newTestParser()
	for _, text := range []string{"(0) [C C C C]", "(fast) [C C C C]", "(120 [C C C C]", "4/3 [C C C C]", "0/4 [C C C C]"} {
		_, err := p.Parse(text)
		var lexErr *LexicalError
		assert.True(t, errors.As(err, &lexErr), "%s: %v", text, err)
	}
}

func TestCompoundMeterWithDots(t *testing.T) {
	s, err := newTestParser().Parse("(100) 6/8\n[C/4. E/4.]\n[G/8 G/8 G/8 C/4.]")
	require.NoError(t, err)
	assert.Equal(t, 8, s.BeatSize)
	require.Len(t, s.Measures, 2)
	requireBeatsBalanced(t, s)
}

func TestSingleInstrumentMeasures(t *testing.T) {
	s, err := newTestParser().Parse("[C C G G] {Guitar}[A A G/2]\nViolin [F F E E] [D D C/2]")
	require.NoError(t, err)
	require.Len(t, s.Measures, 4)
	instruments := make([]int, 0, 4)
	for _, m := range s.Measures {
		require.Len(t, m.Sections, 1)
		instruments = append(instruments, m.Sections[0].Instrument)
	}
	assert.Equal(t, []int{names.AcousticGrandPiano, 24, 40, 40}, instruments)
	requireBeatsBalanced(t, s)
}

func TestBeatCountMismatch(t *testing.T) {
	_, err := newTestParser().Parse("[C/1 C/1]")
	var mismatch *BeatCountMismatchError
	require.True(t, errors.As(err, &mismatch), "%v", err)
	assert.Equal(t, 4.0, mismatch.Expected)
	assert.Equal(t, 8.0, mismatch.Actual)
	assert.Equal(t, "[C/1 C/1]", mismatch.Fragment)
	assert.Equal(t, 1, mismatch.Line)
}

func TestSingleStructuralErrors(t *testing.T) {
	p := newTestParser()
	for _, text := range []string{"[C C C C", "[C C C C] oops", "{Piano} C C C C [C C C C]", "[C [C] C C]"} {
		_, err := p.Parse(text)
		var structErr *StructuralError
		assert.True(t, errors.As(err, &structErr), "%s: %v", text, err)
	}
	_, err := p.Parse("Kazoo [C C C C]")
	var symErr *UnknownSymbolError
	require.True(t, errors.As(err, &symErr))
	assert.Equal(t, SymbolInstrument, symErr.Kind)
}

func TestLooseModeSplitsMeasures(t *testing.T) {
	text := "C C G G A A G/2 F F E E D D C/2"
	s, err := newTestParser().Parse(text)
	require.NoError(t, err)
	require.Len(t, s.Measures, 4) // ceil(14 tokens / 4)
	counts := []int{}
	for _, m := range s.Measures {
		require.Len(t, m.Sections, 1)
		counts = append(counts, len(m.Sections[0].Notes))
	}
	assert.Equal(t, []int{4, 3, 4, 3}, counts)
	requireBeatsBalanced(t, s)
}

func TestLooseModeAccumulatesAcrossLines(t *testing.T) {
	s, err := newTestParser().Parse("C C\nG G A\nA")
	require.NoError(t, err)
	require.Len(t, s.Measures, 2)
	assert.Len(t, s.Measures[0].Sections[0].Notes, 4)
	assert.Len(t, s.Measures[1].Sections[0].Notes, 2)
}

func TestLooseModeKeepsTrailingPartial(t *testing.T) {
	s, err := newTestParser().Parse("C D E F G")
	require.NoError(t, err)
	require.Len(t, s.Measures, 2)
	assert.Len(t, s.Measures[1].Sections[0].Notes, 1)
}

func TestLooseModeOverflow(t *testing.T) {
	_, err := newTestParser().Parse("C C C C/2")
	var mismatch *BeatCountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 4.0, mismatch.Expected)
	assert.Equal(t, 5.0, mismatch.Actual)
	assert.Equal(t, "C C C C/2", mismatch.Fragment)
}

func TestLooseModeInstruments(t *testing.T) {
	s, err := newTestParser().Parse("{Acoustic Guitar 1} C C\nGuitar G G\nViolin A A G/2")
	require.NoError(t, err)
	require.Len(t, s.Measures, 2)
	assert.Equal(t, 24, s.Measures[0].Sections[0].Instrument)
	assert.Equal(t, 40, s.Measures[1].Sections[0].Instrument)

	// An instrument change closes the partial measure.
	s, err = newTestParser().Parse("C C\nViolin G G")
	require.NoError(t, err)
	require.Len(t, s.Measures, 2)
	assert.Equal(t, names.AcousticGrandPiano, s.Measures[0].Sections[0].Instrument)
	assert.Equal(t, 40, s.Measures[1].Sections[0].Instrument)
}

func TestEmptyScore(t *testing.T) {
	_, err := newTestParser().Parse("# nothing here\n\n")
	var structErr *StructuralError
	assert.True(t, errors.As(err, &structErr))
}
