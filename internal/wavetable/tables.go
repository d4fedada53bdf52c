package wavetable

import "math"

// families is the number of General MIDI program families (8 programs each).
const families = 16

// familyHarmonics holds the partial amplitudes of each family's waveform,
// indexed by program/8: piano, chromatic percussion, organ, guitar, bass,
// strings, ensemble, brass, reed, pipe, synth lead, synth pad, synth effects,
// ethnic, percussive, sound effects.
var familyHarmonics = [families][]float64{
	{1, 0.5, 0.3, 0.15, 0.1, 0.05},
	{1, 0, 0.35, 0, 0.2, 0, 0.1},
	{1, 0.8, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1},
	{1, 0.6, 0.35, 0.25, 0.15, 0.1},
	{1, 0.3, 0.1},
	{1, 0.5, 0.33, 0.25, 0.2, 0.17, 0.14, 0.12},
	{1, 0.45, 0.3, 0.2, 0.15, 0.1},
	{1, 0.7, 0.5, 0.4, 0.3, 0.25, 0.2},
	{1, 0, 0.33, 0, 0.2, 0, 0.14, 0, 0.11},
	{1, 0.1, 0.05},
	{1, 0.5, 0.33, 0.25, 0.2, 0.17, 0.14, 0.12, 0.11, 0.1},
	{1, 0.3, 0.2, 0.1, 0.05},
	{1, 0.2, 0.4, 0.1, 0.3},
	{1, 0.4, 0.6, 0.2, 0.3},
	{1, 0.25, 0.5, 0.1},
	{1, 0.7, 0.2, 0.6, 0.1, 0.4},
}

func familyOf(program int) int {
	if program < 0 || program > 127 {
		return 0
	}
	return program / 8
}

// buildTable sums the partials into one cycle normalized to a peak of 1.
func buildTable(harmonics []float64) []float64 {
	table := make([]float64, tableLen)
	peak := 0.0
	for i := range table {
		x := twoPi * float64(i) / tableLen
		var s float64
		for h, amp := range harmonics {
			s += amp * math.Sin(float64(h+1)*x)
		}
		table[i] = s
		peak = math.Max(peak, math.Abs(s))
	}
	if peak > 0 {
		for i := range table {
			table[i] /= peak
		}
	}
	return table
}

type percussion struct {
	toneHz   float64
	noise    float64
	decaySec float64
}

// percussionFor shapes a General MIDI percussion key.
func percussionFor(key int) percussion {
	switch {
	case key == 35 || key == 36:
		return percussion{toneHz: 55, noise: 0.1, decaySec: 0.25}
	case key == 38 || key == 40:
		return percussion{toneHz: 180, noise: 0.6, decaySec: 0.15}
	case key == 42 || key == 44:
		return percussion{toneHz: 400, noise: 0.95, decaySec: 0.04}
	case key == 46:
		return percussion{toneHz: 400, noise: 0.95, decaySec: 0.3}
	case key == 41 || key == 43 || key == 45 || key == 47 || key == 48 || key == 50:
		return percussion{toneHz: midiToFreq(key) / 2, noise: 0.2, decaySec: 0.3}
	case key >= 49 && key <= 59:
		return percussion{toneHz: 600, noise: 0.9, decaySec: 0.8}
	default:
		return percussion{toneHz: midiToFreq(key), noise: 0.5, decaySec: 0.2}
	}
}
