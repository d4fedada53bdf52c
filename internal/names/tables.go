package names

import (
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// Tables resolves human-readable pitch and instrument names to numeric ids.
// A Tables value is immutable after construction and safe for concurrent use.
type Tables struct {
	pitches     map[string]int
	instruments map[string]int
	displayName map[int]string
}

var defaultTables = sync.OnceValue(New)

// Default returns the shared standard tables, built on first use.
func Default() *Tables { return defaultTables() }

var sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var flatNames = [12]string{"", "Db", "", "Eb", "", "", "Gb", "", "Ab", "", "Bb", ""}

// Fixed-do solfège and scale degrees, both anchored on C4.
var (
	solfege = map[string]int{
		"Do": 60, "Re": 62, "Mi": 64, "Fa": 65, "So": 67, "Sol": 67, "La": 69, "Si": 71, "Ti": 71,
	}
	degrees = [7]int{60, 62, 64, 65, 67, 69, 71}
)

// New builds a fresh copy of the standard tables.
func New() *Tables {
	t := &Tables{
		pitches:     make(map[string]int, 512),
		instruments: make(map[string]int, 256),
		displayName: make(map[int]string, 160),
	}
	t.pitches[pitchKey("_")] = RestMarker
	t.pitches[pitchKey("-")] = RestMarker
	for key := LowestKey; key <= HighestKey; key++ {
		octave := strconv.Itoa(key/12 - 1)
		pc := key % 12
		t.pitches[pitchKey(sharpNames[pc]+octave)] = key
		if flatNames[pc] != "" {
			t.pitches[pitchKey(flatNames[pc]+octave)] = key
		}
		if key/12-1 == 4 {
			t.pitches[pitchKey(sharpNames[pc])] = key
			if flatNames[pc] != "" {
				t.pitches[pitchKey(flatNames[pc])] = key
			}
		}
	}
	t.pitches[pitchKey("MiddleC")] = MiddleC
	t.pitches[pitchKey("ConcertPitch")] = ConcertPitch
	for name, key := range solfege {
		t.pitches[pitchKey(name)] = key
	}
	for i, key := range degrees {
		t.pitches[strconv.Itoa(i+1)] = key
	}

	for program, name := range generalMIDIPrograms {
		t.addInstrument(name, program)
	}
	for _, c := range instrumentClasses {
		t.instruments[instrumentKey(c.name)] = c.program
	}
	for _, k := range drumKits {
		t.addInstrument(k.name, k.id)
	}
	t.instruments[instrumentKey("Drums")] = StandardDrumKit
	t.addInstrument("Vocal", Vocal)
	t.instruments[instrumentKey("Vocals")] = Vocal
	return t
}

func (t *Tables) addInstrument(name string, id int) {
	t.instruments[instrumentKey(name)] = id
	if _, ok := t.displayName[id]; !ok {
		t.displayName[id] = name
	}
}

// Pitch resolves a pitch name case-insensitively. Rest tokens resolve to
// RestMarker.
func (t *Tables) Pitch(name string) (int, bool) {
	key, ok := t.pitches[pitchKey(name)]
	return key, ok
}

// Instrument resolves an instrument name. Case, spaces, hyphens and
// underscores are ignored, so "Acoustic Grand Piano" and "acousticgrandpiano"
// are the same instrument.
func (t *Tables) Instrument(name string) (int, bool) {
	id, ok := t.instruments[instrumentKey(name)]
	return id, ok
}

// InstrumentName returns the canonical display name for an instrument id.
func (t *Tables) InstrumentName(id int) string {
	if name, ok := t.displayName[id]; ok {
		return name
	}
	return "Program " + strconv.Itoa(id)
}

// PitchName returns the sharp spelling of a MIDI key, e.g. 61 -> "C#4".
func PitchName(key int) string {
	switch key {
	case RestMarker:
		return "_"
	case VocalMarker:
		return "vocal"
	}
	if key < 0 || key > 127 {
		return "?" + strconv.Itoa(key)
	}
	return sharpNames[key%12] + strconv.Itoa(key/12-1)
}

// cases.Caser keeps internal state, so a fresh one is made per lookup.
func pitchKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func instrumentKey(name string) string {
	folded := cases.Fold().String(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		}
		return r
	}, folded)
}
