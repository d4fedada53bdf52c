// Package effects is the master bus: stereo effects run over a rendered
// buffer after the synthesized and vocal passes are mixed.
package effects

import "github.com/cbegin/fluentscore-go/internal/pcm"

// Effector processes one stereo frame.
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
}

// Bus applies a sequence of effects in order, then optionally scales the
// result to a target peak.
type Bus struct {
	effects []Effector
	peak    float32
}

func NewBus(effects ...Effector) *Bus {
	return &Bus{effects: effects}
}

func (b *Bus) Add(e Effector) {
	b.effects = append(b.effects, e)
}

// NormalizeTo sets the peak the bus output is scaled to. Zero disables it.
func (b *Bus) NormalizeTo(peak float32) {
	b.peak = peak
}

// Empty reports whether Apply would leave a buffer untouched.
func (b *Bus) Empty() bool {
	return len(b.effects) == 0 && b.peak <= 0
}

// Apply processes buf in place from a clean effect state.
func (b *Bus) Apply(buf *pcm.Buffer) {
	if len(b.effects) > 0 {
		for _, e := range b.effects {
			e.Reset()
		}
		for i := range buf.Left {
			l, r := buf.Left[i], buf.Right[i]
			for _, e := range b.effects {
				l, r = e.Process(l, r)
			}
			buf.Left[i], buf.Right[i] = l, r
		}
	}
	if b.peak > 0 {
		buf.Normalize(b.peak)
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
