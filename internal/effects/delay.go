package effects

// EchoSettings configures the feedback delay. Cross routes part of each
// channel's feedback into the other for a ping-pong echo.
type EchoSettings struct {
	DelayMs  float64
	Feedback float32
	Cross    float32
	Wet      float32
}

func DefaultEcho() EchoSettings {
	return EchoSettings{DelayMs: 250, Feedback: 0.35, Cross: 0.5, Wet: 0.25}
}

// Delay is a stereo feedback delay.
type Delay struct {
	left, right []float32
	pos         int
	feedback    float32
	cross       float32
	wet         float32
}

func NewDelay(sampleRate int, s EchoSettings) *Delay {
	n := max(int(s.DelayMs*float64(sampleRate)/1000), 1)
	return &Delay{
		left:     make([]float32, n),
		right:    make([]float32, n),
		feedback: clamp(s.Feedback, 0, 0.95),
		cross:    clamp(s.Cross, 0, 1),
		wet:      clamp(s.Wet, 0, 1),
	}
}

func (d *Delay) Process(l, r float32) (float32, float32) {
	dl, dr := d.left[d.pos], d.right[d.pos]
	straight, crossed := d.feedback*(1-d.cross), d.feedback*d.cross
	d.left[d.pos] = l + dl*straight + dr*crossed
	d.right[d.pos] = r + dr*straight + dl*crossed
	d.pos++
	if d.pos == len(d.left) {
		d.pos = 0
	}
	return l*(1-d.wet) + dl*d.wet, r*(1-d.wet) + dr*d.wet
}

func (d *Delay) Reset() {
	clear(d.left)
	clear(d.right)
	d.pos = 0
}
