package sequencer

import (
	"errors"
	"fmt"

	"github.com/cbegin/fluentscore-go/internal/names"
	"github.com/cbegin/fluentscore-go/internal/score"
	"github.com/cbegin/fluentscore-go/internal/timing"
)

// Action is a note starting on a section. Channel is the section index
// within the measure.
type Action struct {
	Channel int
	Note    score.Note
}

// Slot is one quantile of a measure and the notes that start in it.
type Slot struct {
	Index   int
	Actions []Action
}

// Schedule is the merged, time-ordered event list for one measure.
type Schedule struct {
	SmallestUnit int
	Quantiles    int
	Slots        []Slot
}

// Span returns the absolute sample range of slot i of measure m.
func (s Schedule) Span(g timing.Grid, m, i int) (start, length int) {
	return g.SlotSpan(m, i, s.Quantiles)
}

// smallestUnit is the finest note value among non-vocal notes, doubled for an
// odd number of dots so every advance stays whole. It is at least beatSize.
func smallestUnit(m score.Measure, beatSize int) int {
	unit := beatSize
	for _, sec := range m.Sections {
		if sec.IsVocal() {
			continue
		}
		for _, n := range sec.Notes {
			u := n.Duration
			if n.ExtendedDuration%2 == 1 {
				u *= 2
			}
			unit = max(unit, u)
		}
	}
	return unit
}

// slotAdvance is note.BeatCount(unit) in exact integers.
func slotAdvance(n score.Note, unit int) (int, error) {
	num := unit * (2 + n.ExtendedDuration)
	den := 2 * n.Duration
	if n.Duration <= 0 || num%den != 0 {
		return 0, fmt.Errorf("sequencer: 1/%d note with %d dots does not fit a 1/%d grid", n.Duration, n.ExtendedDuration, unit)
	}
	return num / den, nil
}

// Quantize splits a measure into equal slots at the finest note value
// present and places each non-vocal note at the slot where it starts. Every
// slot is present, including those where nothing starts.
func Quantize(m score.Measure, beatsPerMeasure, beatSize int) (Schedule, error) {
	if beatsPerMeasure <= 0 || beatSize <= 0 {
		return Schedule{}, errors.New("sequencer: time signature must be positive")
	}
	unit := smallestUnit(m, beatSize)
	g := timing.Grid{BeatsPerMeasure: beatsPerMeasure, BeatSize: beatSize}
	q, err := g.Quantiles(unit)
	if err != nil {
		return Schedule{}, err
	}
	slots := make([]Slot, q)
	for i := range slots {
		slots[i].Index = i
	}
	for ch, sec := range m.Sections {
		if sec.IsVocal() {
			continue
		}
		cursor := 0
		for _, n := range sec.Notes {
			if cursor >= q {
				return Schedule{}, fmt.Errorf("sequencer: section %d (%s) overruns its measure", ch, sec.GroupName)
			}
			slots[cursor].Actions = append(slots[cursor].Actions, Action{Channel: ch, Note: n})
			adv, err := slotAdvance(n, unit)
			if err != nil {
				return Schedule{}, err
			}
			cursor += adv
		}
		if cursor > q {
			return Schedule{}, fmt.Errorf("sequencer: section %d (%s) overruns its measure", ch, sec.GroupName)
		}
	}
	return Schedule{SmallestUnit: unit, Quantiles: q, Slots: slots}, nil
}

// ErrTooManyChannels is returned when a measure has more melodic sections
// than there are non-percussion MIDI channels.
var ErrTooManyChannels = errors.New("sequencer: too many simultaneous instruments")

// AssignChannels maps each section of a measure to a MIDI channel. Melodic
// sections take 0..15 in order, skipping the percussion channel; drum kits
// share the percussion channel; vocal sections get -1.
func AssignChannels(m score.Measure) ([]int, error) {
	out := make([]int, len(m.Sections))
	next := 0
	for i, sec := range m.Sections {
		switch {
		case sec.IsVocal():
			out[i] = -1
		case sec.IsDrumKit():
			out[i] = names.DrumChannel
		default:
			if next == names.DrumChannel {
				next++
			}
			if next >= Channels {
				return nil, fmt.Errorf("%w: %d melodic sections", ErrTooManyChannels, countMelodic(m))
			}
			out[i] = next
			next++
		}
	}
	return out, nil
}

func countMelodic(m score.Measure) int {
	n := 0
	for _, sec := range m.Sections {
		if !sec.IsVocal() && !sec.IsDrumKit() {
			n++
		}
	}
	return n
}
