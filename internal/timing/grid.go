// Package timing converts musical positions (measure, slot, beat) into
// absolute sample and tick offsets. The scheduler, the compositor and the MIDI
// exporter all go through Grid so their offsets cannot drift apart.
package timing

import (
	"fmt"
	"math"
)

// Grid describes a constant-tempo, constant-meter timeline at a sample rate.
type Grid struct {
	SampleRate      int
	BeatsPerMeasure int
	BeatSize        int
	BPM             int
}

// NewGrid validates its inputs and returns a Grid.
func NewGrid(sampleRate, beatsPerMeasure, beatSize, bpm int) (Grid, error) {
	switch {
	case sampleRate <= 0:
		return Grid{}, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	case beatsPerMeasure <= 0:
		return Grid{}, fmt.Errorf("beats per measure must be positive, got %d", beatsPerMeasure)
	case beatSize <= 0:
		return Grid{}, fmt.Errorf("beat size must be positive, got %d", beatSize)
	case bpm <= 0:
		return Grid{}, fmt.Errorf("bpm must be positive, got %d", bpm)
	}
	return Grid{SampleRate: sampleRate, BeatsPerMeasure: beatsPerMeasure, BeatSize: beatSize, BPM: bpm}, nil
}

// MeasureSeconds is beatsPerMeasure/bpm*60.
func (g Grid) MeasureSeconds() float64 {
	return float64(g.BeatsPerMeasure*60) / float64(g.BPM)
}

// MeasureStart returns the absolute sample index where measure m begins. The
// value is floor(m * measureSeconds * sampleRate) computed exactly.
func (g Grid) MeasureStart(m int) int {
	return int(int64(m) * int64(g.BeatsPerMeasure) * 60 * int64(g.SampleRate) / int64(g.BPM))
}

// MeasureLen is the number of samples in measure m. Adjacent measures tile
// the timeline exactly even when a measure is not a whole number of samples.
func (g Grid) MeasureLen(m int) int {
	return g.MeasureStart(m+1) - g.MeasureStart(m)
}

// TotalSamples is the buffer length for count measures, rounded up to whole
// seconds.
func (g Grid) TotalSamples(count int) int {
	num := int64(count) * int64(g.BeatsPerMeasure) * 60
	bpm := int64(g.BPM)
	return int((num+bpm-1)/bpm) * g.SampleRate
}

// Quantiles returns how many equal slots a measure splits into when the
// finest note value present is smallestUnit.
func (g Grid) Quantiles(smallestUnit int) (int, error) {
	n := smallestUnit * g.BeatsPerMeasure
	if smallestUnit <= 0 || n%g.BeatSize != 0 {
		return 0, fmt.Errorf("unit 1/%d does not divide a %d/%d measure", smallestUnit, g.BeatsPerMeasure, g.BeatSize)
	}
	return n / g.BeatSize, nil
}

// SlotSpan returns the absolute start and length in samples of slot i of q in
// measure m. Slot boundaries are floor(i*len/q), so the slots of a measure are
// gapless and never overlap.
func (g Grid) SlotSpan(m, i, q int) (start, length int) {
	begin := g.MeasureStart(m)
	n := int64(g.MeasureLen(m))
	lo := int(int64(i) * n / int64(q))
	hi := int(int64(i+1) * n / int64(q))
	return begin + lo, hi - lo
}

// BeatOffset returns the absolute sample index reached after beats beats of
// measure m.
func (g Grid) BeatOffset(m int, beats float64) int {
	n := float64(g.MeasureLen(m))
	rel := math.Floor(beats*n/float64(g.BeatsPerMeasure) + 1e-9)
	return g.MeasureStart(m) + int(rel)
}

// TicksPerMeasure converts a quarter-note resolution into ticks per measure.
func (g Grid) TicksPerMeasure(ticksPerQuarter int) int {
	return g.BeatsPerMeasure * ticksPerQuarter * 4 / g.BeatSize
}

// SlotTick returns the absolute tick of slot i of q in measure m.
func (g Grid) SlotTick(m, i, q, ticksPerQuarter int) int {
	per := g.TicksPerMeasure(ticksPerQuarter)
	return m*per + i*per/q
}
