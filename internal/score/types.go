package score

import "github.com/cbegin/fluentscore-go/internal/names"

// ValidDurations lists the inverse note values a Note may carry.
var ValidDurations = [...]int{1, 2, 4, 8, 16, 32}

// IsValidDuration reports whether d is one of ValidDurations.
func IsValidDuration(d int) bool {
	for _, v := range ValidDurations {
		if v == d {
			return true
		}
	}
	return false
}

// NotePitch is one sounding component of a Note. Pitch is a MIDI key,
// names.RestMarker for silence, or names.VocalMarker with VocalName set.
type NotePitch struct {
	Pitch     int
	VocalName string
}

func (p NotePitch) IsRest() bool  { return p.Pitch == names.RestMarker }
func (p NotePitch) IsVocal() bool { return p.Pitch == names.VocalMarker }

// Note is a single rhythmic event: one pitch, a chord, a rest or a vocal clip.
type Note struct {
	Pitches  []NotePitch
	Duration int // 1, 2, 4, 8, 16 or 32
	Velocity int // 0..127
	// ExtendedDuration counts trailing dots; each adds half the base length.
	ExtendedDuration int
}

// BeatCount returns how many beats of size beatSize the note occupies.
func (n Note) BeatCount(beatSize int) float64 {
	base := float64(beatSize) / float64(n.Duration)
	if n.ExtendedDuration > 0 {
		return base * (1 + 0.5*float64(n.ExtendedDuration))
	}
	return base
}

// IsRest reports whether every pitch of the note is silent.
func (n Note) IsRest() bool {
	for _, p := range n.Pitches {
		if !p.IsRest() {
			return false
		}
	}
	return true
}

// Section is one channel's notes within a measure.
type Section struct {
	GroupName  string
	Instrument int
	Notes      []Note
}

func (s Section) BeatCount(beatSize int) float64 {
	var total float64
	for _, n := range s.Notes {
		total += n.BeatCount(beatSize)
	}
	return total
}

// IsVocal reports whether the section carries clip references instead of
// synthesized notes.
func (s Section) IsVocal() bool { return s.Instrument == names.Vocal }

func (s Section) IsDrumKit() bool { return names.IsDrumKit(s.Instrument) }

// Measure holds the sections that sound simultaneously for one bar.
type Measure struct {
	Sections []Section
}

// Score is a parsed piece. It is read-only once returned by the parser.
type Score struct {
	BeatsPerMeasure int
	BeatSize        int
	BPM             int
	Vocals          map[string]string // alias -> clip path
	Measures        []Measure
}

// MeasureSeconds is the wall-clock length of one measure.
func (s *Score) MeasureSeconds() float64 {
	return float64(s.BeatsPerMeasure*60) / float64(s.BPM)
}

// TotalSeconds is the score length rounded up to whole seconds. It is computed
// in integers so that exact lengths never round up by float error.
func (s *Score) TotalSeconds() int {
	if s.BPM <= 0 {
		return 0
	}
	num := int64(len(s.Measures)) * int64(s.BeatsPerMeasure) * 60
	bpm := int64(s.BPM)
	return int((num + bpm - 1) / bpm)
}

// TotalSamples is the per-channel buffer length needed at sampleRate.
func (s *Score) TotalSamples(sampleRate int) int {
	return s.TotalSeconds() * sampleRate
}

// VocalAliases returns the aliases referenced by notes, in first-use order.
func (s *Score) VocalAliases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range s.Measures {
		for _, sec := range m.Sections {
			for _, n := range sec.Notes {
				for _, p := range n.Pitches {
					if p.IsVocal() && !seen[p.VocalName] {
						seen[p.VocalName] = true
						out = append(out, p.VocalName)
					}
				}
			}
		}
	}
	return out
}
