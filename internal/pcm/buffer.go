// Package pcm holds the stereo float32 render target and its conversions to
// and from interleaved 16-bit PCM.
package pcm

import (
	"errors"
	"fmt"
	"math"
)

// ErrSpanOutOfBounds is returned when a write would fall outside the buffer.
var ErrSpanOutOfBounds = errors.New("pcm: span out of bounds")

// Buffer is a planar stereo buffer. Left and Right always have equal length.
type Buffer struct {
	Left  []float32
	Right []float32
}

// NewBuffer allocates a silent buffer of frames frames.
func NewBuffer(frames int) *Buffer {
	if frames < 0 {
		frames = 0
	}
	return &Buffer{Left: make([]float32, frames), Right: make([]float32, frames)}
}

// Len returns the number of frames.
func (b *Buffer) Len() int { return len(b.Left) }

// Span returns writable views of frames [offset, offset+n) of both channels.
func (b *Buffer) Span(offset, n int) (left, right []float32, err error) {
	if offset < 0 || n < 0 || offset+n > len(b.Left) {
		return nil, nil, fmt.Errorf("%w: [%d,%d) of %d", ErrSpanOutOfBounds, offset, offset+n, len(b.Left))
	}
	return b.Left[offset : offset+n], b.Right[offset : offset+n], nil
}

// MixAt adds left/right into the buffer starting at offset. Input running past
// the end of the buffer is dropped; the number of frames mixed is returned. An
// offset outside [0, Len) is an error.
func (b *Buffer) MixAt(offset int, left, right []float32) (int, error) {
	if offset < 0 || offset >= len(b.Left) {
		return 0, fmt.Errorf("%w: mix offset %d of %d", ErrSpanOutOfBounds, offset, len(b.Left))
	}
	n := min(len(left), len(right), len(b.Left)-offset)
	dl := b.Left[offset : offset+n]
	dr := b.Right[offset : offset+n]
	for i := 0; i < n; i++ {
		dl[i] += left[i]
		dr[i] += right[i]
	}
	return n, nil
}

// Interleave returns LRLR... float samples, the layout ebiten's float player
// and the float WAV encoder expect.
func (b *Buffer) Interleave() []float32 {
	out := make([]float32, len(b.Left)*2)
	for i := range b.Left {
		out[i*2] = b.Left[i]
		out[i*2+1] = b.Right[i]
	}
	return out
}

// Peak returns the largest absolute sample value.
func (b *Buffer) Peak() float32 {
	var peak float32
	for i := range b.Left {
		if v := float32(math.Abs(float64(b.Left[i]))); v > peak {
			peak = v
		}
		if v := float32(math.Abs(float64(b.Right[i]))); v > peak {
			peak = v
		}
	}
	return peak
}

// Normalize scales the buffer so its peak equals target. Silent buffers are
// left untouched.
func (b *Buffer) Normalize(target float32) {
	peak := b.Peak()
	if peak == 0 {
		return
	}
	g := target / peak
	for i := range b.Left {
		b.Left[i] *= g
		b.Right[i] *= g
	}
}
