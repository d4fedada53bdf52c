package effects

// ReverbSettings describes a room. RoomSize scales the delay lines,
// Feedback sets the decay and Wet is the wet/dry mix; all lie in 0..1.
type ReverbSettings struct {
	RoomSize float32
	Feedback float32
	Wet      float32
}

func DefaultReverb() ReverbSettings {
	return ReverbSettings{RoomSize: 0.5, Feedback: 0.7, Wet: 0.2}
}

// stereoSpread offsets the right channel's delay lines so the tail is
// decorrelated between the speakers.
const stereoSpread = 23

// Reverb is a Schroeder reverb: four parallel comb filters into two series
// allpass filters per channel.
type Reverb struct {
	left  reverbLine
	right reverbLine
	wet   float32
}

type reverbLine struct {
	combs   [4]delayLine
	allpass [2]delayLine
}

type delayLine struct {
	buf []float32
	pos int
	fb  float32
}

// NewReverb creates a reverb effect.
func NewReverb(sampleRate int, s ReverbSettings) *Reverb {
	base := max(int(float32(sampleRate)*clamp(s.RoomSize, 0, 1)*0.05), 10)
	fb := clamp(s.Feedback, 0, 0.95)
	return &Reverb{
		left:  newReverbLine(base, fb, 0),
		right: newReverbLine(base, fb, stereoSpread),
		wet:   clamp(s.Wet, 0, 1),
	}
}

func newReverbLine(base int, fb float32, spread int) reverbLine {
	var rl reverbLine
	combLens := [4]int{base, base * 1117 / 1000, base * 1271 / 1000, base * 1437 / 1000}
	for i := range rl.combs {
		rl.combs[i] = delayLine{buf: make([]float32, combLens[i]+spread), fb: fb}
	}
	apLens := [2]int{base * 347 / 1000, base * 213 / 1000}
	for i := range rl.allpass {
		rl.allpass[i] = delayLine{buf: make([]float32, max(apLens[i]+spread/2, 1)), fb: 0.5}
	}
	return rl
}

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	mono := (l + rt) * 0.5
	outL := r.left.process(mono)
	outR := r.right.process(mono)
	return l*(1-r.wet) + outL*r.wet, rt*(1-r.wet) + outR*r.wet
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (rl *reverbLine) process(in float32) float32 {
	var out float32
	for i := range rl.combs {
		out += rl.combs[i].comb(in)
	}
	out *= 0.25
	for i := range rl.allpass {
		out = rl.allpass[i].allpass(out)
	}
	return out
}

func (rl *reverbLine) reset() {
	for i := range rl.combs {
		rl.combs[i].reset()
	}
	for i := range rl.allpass {
		rl.allpass[i].reset()
	}
}

func (d *delayLine) comb(in float32) float32 {
	out := d.buf[d.pos]
	d.buf[d.pos] = in + out*d.fb
	d.advance()
	return out
}

func (d *delayLine) allpass(in float32) float32 {
	bufOut := d.buf[d.pos]
	d.buf[d.pos] = in + bufOut*d.fb
	d.advance()
	return bufOut - in
}

func (d *delayLine) advance() {
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
}

func (d *delayLine) reset() {
	clear(d.buf)
	d.pos = 0
}
