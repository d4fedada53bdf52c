package pcm

import "fmt"

// ToPCM16 converts to interleaved signed 16-bit samples, clamping to [-1, 1].
func (b *Buffer) ToPCM16() []int16 {
	out := make([]int16, len(b.Left)*2)
	for i := range b.Left {
		out[i*2] = floatToInt16(b.Left[i])
		out[i*2+1] = floatToInt16(b.Right[i])
	}
	return out
}

// FromPCM16 splits interleaved 16-bit samples with the given channel count
// into a planar stereo buffer. Mono input is copied to both channels; channels
// beyond the second are ignored.
func FromPCM16(samples []int16, channels int) (*Buffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("pcm: invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("pcm: %d samples is not a whole number of %d-channel frames", len(samples), channels)
	}
	frames := len(samples) / channels
	b := NewBuffer(frames)
	for i := 0; i < frames; i++ {
		l := int16ToFloat(samples[i*channels])
		r := l
		if channels > 1 {
			r = int16ToFloat(samples[i*channels+1])
		}
		b.Left[i] = l
		b.Right[i] = r
	}
	return b, nil
}

// FromLE16 decodes little-endian interleaved 16-bit stereo bytes, the format
// ebiten's decoders produce.
func FromLE16(data []byte) (*Buffer, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("pcm: %d bytes is not a whole number of 16-bit stereo frames", len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
	}
	return FromPCM16(samples, 2)
}

func floatToInt16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

func int16ToFloat(v int16) float32 {
	return float32(v) / 32767
}

// Resample returns a copy of b converted from srcRate to dstRate by linear
// interpolation.
func (b *Buffer) Resample(srcRate, dstRate int) *Buffer {
	if srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || b.Len() == 0 {
		out := NewBuffer(b.Len())
		copy(out.Left, b.Left)
		copy(out.Right, b.Right)
		return out
	}
	n := int(int64(b.Len()) * int64(dstRate) / int64(srcRate))
	if n < 1 {
		n = 1
	}
	out := NewBuffer(n)
	step := float64(srcRate) / float64(dstRate)
	last := b.Len() - 1
	for i := 0; i < n; i++ {
		pos := float64(i) * step
		idx := int(pos)
		if idx > last {
			idx = last
		}
		next := idx
		if idx < last {
			next = idx + 1
		}
		frac := float32(pos - float64(idx))
		out.Left[i] = b.Left[idx] + (b.Left[next]-b.Left[idx])*frac
		out.Right[i] = b.Right[idx] + (b.Right[next]-b.Right[idx])*frac
	}
	return out
}
