package synth

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbegin/fluentscore-go/internal/sequencer"
)

var _ sequencer.ToneEngine = (*Engine)(nil)

type mockSynth struct {
	messages []string
	rate     int32
	rendered int
}

func (m *mockSynth) ProcessMidiMessage(channel, command, data1, data2 int32) {
	m.messages = append(m.messages, fmt.Sprintf("%d %#x %#x %d", channel, command, data1, data2))
}

func (m *mockSynth) NoteOn(channel, key, vel int32) {
	m.messages = append(m.messages, fmt.Sprintf("on %d %d %d", channel, key, vel))
}

func (m *mockSynth) Render(left, right []float32) {
	m.rendered += len(left)
}

func withMock(t *testing.T) *mockSynth {
	t.Helper()
	ms := &mockSynth{}
	orig := newSynthesizer
	newSynthesizer = func(_ *meltysynth.SoundFont, settings *meltysynth.SynthesizerSettings) (synthesizer, error) {
		ms.rate = settings.SampleRate
		return ms, nil
	}
	t.Cleanup(func() { newSynthesizer = orig })
	return ms
}

func TestEngineTranslatesToMidiMessages(t *testing.T) {
	ms := withMock(t)
	e, err := New(&SoundFont{sf: &meltysynth.SoundFont{}}, 22050)
	require.NoError(t, err)
	assert.Equal(t, int32(22050), ms.rate)

	e.ProgramChange(9, 25)
	e.NoteOn(9, 36, 100)
	e.NoteOffAll(9, true)
	e.NoteOffAll(0, false)
	e.Render(make([]float32, 64), make([]float32, 64))

	assert.Equal(t, []string{
		"9 0xc0 0x19 0",
		"on 9 36 100",
		"9 0xb0 0x7b 0",
		"0 0xb0 0x78 0",
	}, ms.messages)
	assert.Equal(t, 64, ms.rendered)
}

func TestNewFailures(t *testing.T) {
	_, err := New(nil, 44100)
	assert.Error(t, err)

	orig := newSynthesizer
	newSynthesizer = func(*meltysynth.SoundFont, *meltysynth.SynthesizerSettings) (synthesizer, error) {
		return nil, errors.New("bad rate")
	}
	defer func() { newSynthesizer = orig }()
	_, err = New(&SoundFont{sf: &meltysynth.SoundFont{}}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad rate")
}

func TestLoadSoundFontRejectsGarbage(t *testing.T) {
	_, err := LoadSoundFont(strings.NewReader("definitely not a soundfont"))
	assert.Error(t, err)

	_, err = OpenSoundFont("testdata/does-not-exist.sf2")
	assert.Error(t, err)
}
