// Package smfexport writes a score's scheduled timeline as a Standard MIDI
// File: a conductor track followed by one track per channel.
package smfexport

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cbegin/fluentscore-go/internal/score"
	"github.com/cbegin/fluentscore-go/internal/sequencer"
	"github.com/cbegin/fluentscore-go/internal/timing"
)

// TicksPerQuarter is the resolution of exported files.
const TicksPerQuarter = 480

type event struct {
	tick uint32
	msg  smf.Message
}

// channelTrack collects one channel's events in time order. Notes sound
// until the next event on the channel, as in the rendered audio.
type channelTrack struct {
	channel    uint8
	name       string
	program    int
	hasProgram bool
	sounding   []uint8
	events     []event
}

func (t *channelTrack) add(tick int, msg midi.Message) {
	t.events = append(t.events, event{tick: uint32(tick), msg: smf.Message(msg)})
}

func (t *channelTrack) releaseAll(tick int) {
	for _, key := range t.sounding {
		t.add(tick, midi.NoteOff(t.channel, key))
	}
	t.sounding = t.sounding[:0]
}

func (t *channelTrack) noteOn(tick int, key uint8, velocity uint8) {
	for _, k := range t.sounding {
		if k == key {
			return
		}
	}
	t.sounding = append(t.sounding, key)
	t.add(tick, midi.NoteOn(t.channel, key, velocity))
}

// Build schedules s exactly as the compositor does and converts the result to
// an SMF type 1 file. Vocal sections have no MIDI representation and are left
// out.
func Build(s *score.Score) (*smf.SMF, error) {
	plans, err := sequencer.Plan(s)
	if err != nil {
		return nil, err
	}
	grid := timing.Grid{BeatsPerMeasure: s.BeatsPerMeasure, BeatSize: s.BeatSize, BPM: s.BPM}
	if grid.BeatSize <= 0 || grid.BPM <= 0 {
		return nil, fmt.Errorf("smfexport: invalid meter %d/%d at %d bpm", s.BeatsPerMeasure, s.BeatSize, s.BPM)
	}

	var order []*channelTrack
	tracks := map[int]*channelTrack{}
	for m, measure := range s.Measures {
		plan := plans[m]
		start := grid.SlotTick(m, 0, 1, TicksPerQuarter)
		for _, t := range order {
			t.releaseAll(start)
		}
		for i, sec := range measure.Sections {
			ch := plan.Channels[i]
			if ch < 0 {
				continue
			}
			t, ok := tracks[ch]
			if !ok {
				t = &channelTrack{channel: uint8(ch), name: trackName(sec, ch)}
				tracks[ch] = t
				order = append(order, t)
			}
			program := sequencer.ProgramFor(sec.Instrument)
			if !t.hasProgram || t.program != program {
				t.add(start, midi.ProgramChange(t.channel, uint8(program)))
				t.program, t.hasProgram = program, true
			}
		}
		q := plan.Schedule.Quantiles
		for _, slot := range plan.Schedule.Slots {
			tick := grid.SlotTick(m, slot.Index, q, TicksPerQuarter)
			for _, a := range slot.Actions {
				t := tracks[plan.Channels[a.Channel]]
				t.releaseAll(tick)
				for _, p := range a.Note.Pitches {
					if p.IsRest() || p.IsVocal() {
						continue
					}
					t.noteOn(tick, uint8(p.Pitch), uint8(a.Note.Velocity))
				}
			}
		}
	}
	end := grid.SlotTick(len(s.Measures), 0, 1, TicksPerQuarter)
	for _, t := range order {
		t.releaseAll(end)
	}

	file := smf.NewSMF1()
	file.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	file.Add(conductorTrack(s))
	for _, t := range order {
		file.Add(t.track())
	}
	return file, nil
}

// Write builds the file for s and writes it to w.
func Write(w io.Writer, s *score.Score) error {
	file, err := Build(s)
	if err != nil {
		return err
	}
	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// conductorTrack carries the tempo in quarter notes per minute and the time
// signature.
func conductorTrack(s *score.Score) smf.Track {
	qpm := float64(s.BPM) * 4 / float64(s.BeatSize)
	return smf.Track{
		{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))},
		{Delta: 0, Message: smf.Message(smf.MetaTempo(qpm))},
		{Delta: 0, Message: smf.Message(smf.MetaTimeSig(uint8(s.BeatsPerMeasure), uint8(s.BeatSize), 24, 8))},
		{Delta: 0, Message: smf.EOT},
	}
}

func (t *channelTrack) track() smf.Track {
	track := smf.Track{{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(t.name))}}
	var last uint32
	for _, ev := range t.events {
		track = append(track, smf.Event{Delta: ev.tick - last, Message: ev.msg})
		last = ev.tick
	}
	return append(track, smf.Event{Delta: 0, Message: smf.EOT})
}

func trackName(sec score.Section, ch int) string {
	if sec.GroupName != "" {
		return sec.GroupName
	}
	return fmt.Sprintf("Channel %d", ch+1)
}
