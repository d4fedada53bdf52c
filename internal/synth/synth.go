// Package synth is a ToneEngine backed by SoundFont synthesis.
package synth

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	msgControlChange = 0xB0
	msgProgramChange = 0xC0

	ccAllSoundOff = 0x78
	ccAllNotesOff = 0x7B
)

// synthesizer abstracts the subset of meltysynth.Synthesizer the engine drives.
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1, data2 int32)
	NoteOn(channel, key, vel int32)
	Render(left, right []float32)
}

// newSynthesizer constructs a meltysynth synthesizer. Tests may override this
// to inject a mock implementation.
var newSynthesizer = func(sf *meltysynth.SoundFont, settings *meltysynth.SynthesizerSettings) (synthesizer, error) {
	return meltysynth.NewSynthesizer(sf, settings)
}

// SoundFont is a parsed .sf2 bank. It is read-only and may back any number
// of engines.
type SoundFont struct {
	sf *meltysynth.SoundFont
}

func LoadSoundFont(r io.Reader) (*SoundFont, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("synth: parse soundfont: %w", err)
	}
	return &SoundFont{sf: sf}, nil
}

func OpenSoundFont(path string) (*SoundFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return LoadSoundFont(bytes.NewReader(data))
}

// Engine implements sequencer.ToneEngine on one meltysynth synthesizer.
// Channel 9 selects drum kits by program, as in General MIDI.
type Engine struct {
	syn synthesizer
}

// New builds a synthesizer at sampleRate. Each render needs its own Engine.
func New(sf *SoundFont, sampleRate int) (*Engine, error) {
	if sf == nil {
		return nil, fmt.Errorf("synth: no soundfont")
	}
	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	syn, err := newSynthesizer(sf.sf, settings)
	if err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return &Engine{syn: syn}, nil
}

func (e *Engine) ProgramChange(channel, program int) {
	e.syn.ProcessMidiMessage(int32(channel), msgProgramChange, int32(program), 0)
}

func (e *Engine) NoteOn(channel, key, velocity int) {
	e.syn.NoteOn(int32(channel), int32(key), int32(velocity))
}

// NoteOffAll sends All Notes Off, which lets voices release, or All Sound
// Off, which cuts them.
func (e *Engine) NoteOffAll(channel int, withRelease bool) {
	cc := int32(ccAllSoundOff)
	if withRelease {
		cc = ccAllNotesOff
	}
	e.syn.ProcessMidiMessage(int32(channel), msgControlChange, cc, 0)
}

func (e *Engine) Render(left, right []float32) {
	e.syn.Render(left, right)
}
