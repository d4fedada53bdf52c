// Package wavetable is the built-in ToneEngine: a 16-channel wavetable
// synthesizer that renders scores without a SoundFont.
package wavetable

import (
	"math"

	"github.com/cbegin/fluentscore-go/internal/lfo"
	"github.com/cbegin/fluentscore-go/internal/names"
)

const twoPi = math.Pi * 2

const (
	channels  = 16
	maxVoices = 64
	tableLen  = 256
)

// Params controls the wavetable engine.
type Params struct {
	Polyphony   int
	AttackSec   float64
	DecaySec    float64
	SustainLvl  float64
	ReleaseSec  float64
	MasterGain  float64
	VelocityAmp float64
	LPFCutoff   float64 // lowpass filter cutoff in Hz (0 = disabled)

	// Vibrato depth is in semitones. Held notes start to waver after
	// VibratoDelay seconds.
	VibratoDepth float64
	VibratoRate  float64
	VibratoDelay float64
}

// DefaultParams returns sensible defaults for wavetable synthesis.
func DefaultParams() Params {
	return Params{
		Polyphony:    32,
		AttackSec:    0.005,
		DecaySec:     0.12,
		SustainLvl:   0.75,
		ReleaseSec:   0.2,
		MasterGain:   0.3,
		VelocityAmp:  0.8,
		LPFCutoff:    12000,
		VibratoDepth: 0.15,
		VibratoRate:  5.5,
		VibratoDelay: 0.3,
	}
}

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type voice struct {
	active      bool
	channel     int
	velocity    float64
	freq        float64
	phase       float64 // position in the wavetable [0, tableLen)
	env         float64
	envState    envState
	releaseStep float64
	family      int
	vibrato     lfo.LFO

	// Percussion voices decay on their own and mix in noise.
	percussion bool
	decayCoef  float64
	noiseMix   float64
}

// Engine implements sequencer.ToneEngine. Channel 9 plays percussion; every
// other channel picks a waveform family from its General MIDI program.
type Engine struct {
	sampleRate float64
	params     Params
	voices     []voice
	programs   [channels]int
	tables     [families][]float64
	lpfL       float64
	lpfR       float64
	lpfAlpha   float64
	noise      uint32
}

// New creates a wavetable engine at the given sample rate.
func New(sampleRate int, params Params) *Engine {
	if params.Polyphony <= 0 {
		params.Polyphony = DefaultParams().Polyphony
	}
	if params.Polyphony > maxVoices {
		params.Polyphony = maxVoices
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Polyphony),
		noise:      0x9E3779B9,
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1.0 / (twoPi * params.LPFCutoff)
		dt := 1.0 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	for f := range e.tables {
		e.tables[f] = buildTable(familyHarmonics[f])
	}
	return e
}

// ProgramChange selects the program used by later notes on channel.
func (e *Engine) ProgramChange(channel, program int) {
	if channel < 0 || channel >= channels {
		return
	}
	e.programs[channel] = program
}

// NoteOn starts a voice. Velocity 0 is ignored.
func (e *Engine) NoteOn(channel, key, velocity int) {
	if channel < 0 || channel >= channels || velocity <= 0 {
		return
	}
	slot := e.stealVoice()
	v := voice{
		active:   true,
		channel:  channel,
		velocity: clamp(float64(velocity)/127.0, 0, 1),
		freq:     midiToFreq(key),
		envState: envAttack,
		family:   familyOf(e.programs[channel]),
		vibrato: lfo.LFO{
			Depth:    e.params.VibratoDepth,
			RateHz:   e.params.VibratoRate,
			Waveform: lfo.Sine,
			Delay:    e.params.VibratoDelay,
		},
	}
	if channel == names.DrumChannel {
		kit := percussionFor(key)
		v.percussion = true
		v.env = 1
		v.envState = envSustain
		v.freq = kit.toneHz
		v.noiseMix = kit.noise
		v.decayCoef = math.Exp(-1 / (kit.decaySec * e.sampleRate))
	}
	e.voices[slot] = v
}

// NoteOffAll ends every voice on channel: through the release stage when
// withRelease is set, immediately otherwise.
func (e *Engine) NoteOffAll(channel int, withRelease bool) {
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active || v.channel != channel {
			continue
		}
		if !withRelease {
			v.active = false
			v.env = 0
			v.envState = envOff
			continue
		}
		if v.envState != envRelease && !v.percussion {
			v.envState = envRelease
			v.releaseStep = v.env / math.Max(e.params.ReleaseSec*e.sampleRate, 1)
		}
	}
}

// Render overwrites left and right with the next len(left) frames.
func (e *Engine) Render(left, right []float32) {
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		left[i], right[i] = e.renderFrame()
	}
}

func (e *Engine) renderFrame() (float32, float32) {
	var mix float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		env := e.advanceEnv(v)
		if !v.active {
			continue
		}

		var sig float64
		if v.percussion {
			tone := math.Sin(twoPi * v.phase / tableLen)
			sig = tone*(1-v.noiseMix) + e.nextNoise()*v.noiseMix
		} else {
			sig = sampleTable(e.tables[v.family], v.phase)
		}
		mix += sig * env * (0.2 + v.velocity*e.params.VelocityAmp)

		freqMul := 1.0
		if mod := v.vibrato.Sample(e.sampleRate); mod != 0 && !v.percussion {
			freqMul = math.Pow(2, mod/12.0)
		}
		v.phase += v.freq * freqMul * tableLen / e.sampleRate
		v.phase -= math.Floor(v.phase/tableLen) * tableLen
	}
	mix *= e.params.MasterGain

	l, r := mix, mix
	if e.lpfAlpha > 0 {
		e.lpfL += e.lpfAlpha * (l - e.lpfL)
		e.lpfR += e.lpfAlpha * (r - e.lpfR)
		l, r = e.lpfL, e.lpfR
	}
	return float32(clamp(l, -1, 1)), float32(clamp(r, -1, 1))
}

// ActiveVoiceCount returns the number of currently active voices.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

func (e *Engine) stealVoice() int {
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	quiet := 0
	minEnv := e.voices[0].env
	for i := 1; i < len(e.voices); i++ {
		if e.voices[i].env < minEnv {
			minEnv = e.voices[i].env
			quiet = i
		}
	}
	return quiet
}

func (e *Engine) advanceEnv(v *voice) float64 {
	if v.percussion {
		v.env *= v.decayCoef
		if v.env <= 0.0001 {
			v.active = false
			v.env = 0
		}
		return v.env
	}
	switch v.envState {
	case envAttack:
		v.env += 1.0 / math.Max(e.params.AttackSec*e.sampleRate, 1)
		if v.env >= 1 {
			v.env = 1
			v.envState = envDecay
		}
	case envDecay:
		v.env -= (1 - e.params.SustainLvl) / math.Max(e.params.DecaySec*e.sampleRate, 1)
		if v.env <= e.params.SustainLvl {
			v.env = e.params.SustainLvl
			v.envState = envSustain
		}
	case envSustain:
		// hold
	case envRelease:
		v.env -= v.releaseStep
		if v.env <= 0.0001 {
			v.env = 0
			v.envState = envOff
			v.active = false
		}
	case envOff:
		v.active = false
		v.env = 0
	}
	return v.env
}

// nextNoise is a xorshift generator so renders stay reproducible.
func (e *Engine) nextNoise() float64 {
	x := e.noise
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	e.noise = x
	return float64(int32(x)) / math.MaxInt32
}

func sampleTable(table []float64, phase float64) float64 {
	idx := math.Floor(phase)
	frac := phase - idx
	i0 := int(idx) % len(table)
	i1 := (i0 + 1) % len(table)
	return table[i0]*(1-frac) + table[i1]*frac
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
