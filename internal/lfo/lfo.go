// Package lfo provides the low-frequency oscillator behind the built-in
// synthesizer's vibrato and tremolo.
package lfo

import "math"

type Waveform int

const (
	Sine Waveform = iota
	Triangle
	Square
	Saw
)

// LFO produces one modulation value per sample in [-depth, +depth]. The first
// Delay seconds after Reset are flat, then the depth fades in over the
// same span, so short notes stay steady and held notes start to waver.
type LFO struct {
	Depth    float64
	RateHz   float64
	Waveform Waveform
	Delay    float64

	phase   float64
	elapsed float64
}

// Active reports whether the oscillator would produce any modulation.
func (l *LFO) Active() bool {
	return l.Depth != 0 && l.RateHz != 0
}

// Reset restarts the cycle and the onset delay.
func (l *LFO) Reset() {
	l.phase = 0
	l.elapsed = 0
}

// Sample advances by one sample and returns the modulation value.
func (l *LFO) Sample(sampleRate float64) float64 {
	if !l.Active() || sampleRate <= 0 {
		return 0
	}
	gain := 1.0
	if l.Delay > 0 {
		switch {
		case l.elapsed < l.Delay:
			gain = 0
		case l.elapsed < 2*l.Delay:
			gain = (l.elapsed - l.Delay) / l.Delay
		}
		l.elapsed += 1 / sampleRate
	}

	var v float64
	switch l.Waveform {
	case Triangle:
		if l.phase < 0.5 {
			v = 4*l.phase - 1
		} else {
			v = 3 - 4*l.phase
		}
	case Square:
		v = 1
		if l.phase >= 0.5 {
			v = -1
		}
	case Saw:
		v = 1 - 2*l.phase
	default:
		v = math.Sin(2 * math.Pi * l.phase)
	}

	l.phase += l.RateHz / sampleRate
	l.phase -= math.Floor(l.phase)
	return v * l.Depth * gain
}
