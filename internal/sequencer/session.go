package sequencer

import (
	"fmt"

	"github.com/cbegin/fluentscore-go/internal/names"
)

// Channels is the number of MIDI channels a ToneEngine exposes.
const Channels = 16

// ToneEngine is a stateful, channel-addressed synthesizer. Calls must arrive
// in timeline order; an engine is never shared between renders.
type ToneEngine interface {
	ProgramChange(channel, program int)
	NoteOn(channel, key, velocity int)
	// NoteOffAll silences every note on channel, letting them ring out
	// through their release when withRelease is set.
	NoteOffAll(channel int, withRelease bool)
	// Render fills left and right (equal length) from the current state.
	Render(left, right []float32)
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateProgram
	stateNotes
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateProgram:
		return "program"
	case stateNotes:
		return "notes"
	default:
		return "closed"
	}
}

// OrderError is returned when a Session call arrives out of order.
type OrderError struct {
	Op    string
	State string
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("sequencer: %s not allowed in %s state", e.Op, e.State)
}

// Session drives a ToneEngine through the only valid call order:
//
//	BeginMeasure -> ProgramChange* -> (NoteOff | NoteOn | Render)* -> BeginMeasure ...
//
// Program changes after the first note event of a measure are rejected.
type Session struct {
	engine ToneEngine
	state  sessionState
}

func NewSession(engine ToneEngine) *Session {
	return &Session{engine: engine}
}

// BeginMeasure silences every channel immediately.
func (s *Session) BeginMeasure() error {
	if s.state == stateClosed {
		return &OrderError{Op: "BeginMeasure", State: s.state.String()}
	}
	for ch := 0; ch < Channels; ch++ {
		s.engine.NoteOffAll(ch, false)
	}
	s.state = stateProgram
	return nil
}

func (s *Session) ProgramChange(channel, program int) error {
	if s.state != stateProgram {
		return &OrderError{Op: "ProgramChange", State: s.state.String()}
	}
	if err := checkChannel(channel); err != nil {
		return err
	}
	s.engine.ProgramChange(channel, program)
	return nil
}

// NoteOff releases every sounding note on channel.
func (s *Session) NoteOff(channel int) error {
	if err := s.noteEvent("NoteOff"); err != nil {
		return err
	}
	if err := checkChannel(channel); err != nil {
		return err
	}
	s.engine.NoteOffAll(channel, true)
	return nil
}

func (s *Session) NoteOn(channel, key, velocity int) error {
	if err := s.noteEvent("NoteOn"); err != nil {
		return err
	}
	if err := checkChannel(channel); err != nil {
		return err
	}
	if key < 0 || key > 127 {
		return fmt.Errorf("sequencer: key %d out of MIDI range", key)
	}
	s.engine.NoteOn(channel, key, velocity)
	return nil
}

func (s *Session) Render(left, right []float32) error {
	if err := s.noteEvent("Render"); err != nil {
		return err
	}
	if len(left) != len(right) {
		return fmt.Errorf("sequencer: render spans differ (%d vs %d)", len(left), len(right))
	}
	s.engine.Render(left, right)
	return nil
}

// Close ends the session; every later call fails.
func (s *Session) Close() {
	s.state = stateClosed
}

func (s *Session) noteEvent(op string) error {
	if s.state != stateProgram && s.state != stateNotes {
		return &OrderError{Op: op, State: s.state.String()}
	}
	s.state = stateNotes
	return nil
}

func checkChannel(ch int) error {
	if ch < 0 || ch >= Channels {
		return fmt.Errorf("sequencer: channel %d out of range", ch)
	}
	return nil
}

// ProgramFor maps an instrument id to the program sent on its channel.
func ProgramFor(instrument int) int {
	if names.IsDrumKit(instrument) {
		return names.DrumKitProgram(instrument)
	}
	return instrument
}
