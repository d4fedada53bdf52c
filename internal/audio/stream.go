// Package audio plays rendered buffers on the default output device through
// ebiten's audio context.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cbegin/fluentscore-go/internal/pcm"
)

// SampleSource fills dst with interleaved stereo frames.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource is a SampleSource that can signal when playback has ended.
// When Finished returns true, the stream will return io.EOF on the next Read.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// BufferSource plays a rendered buffer once and then pads with silence.
type BufferSource struct {
	buf *pcm.Buffer
	pos int
}

func NewBufferSource(buf *pcm.Buffer) *BufferSource {
	return &BufferSource{buf: buf}
}

func (s *BufferSource) Process(dst []float32) {
	for i := 0; i+1 < len(dst); i += 2 {
		if s.pos < s.buf.Len() {
			dst[i] = s.buf.Left[s.pos]
			dst[i+1] = s.buf.Right[s.pos]
			s.pos++
			continue
		}
		dst[i], dst[i+1] = 0, 0
	}
}

func (s *BufferSource) Finished() bool { return s.pos >= s.buf.Len() }

// StreamReader adapts a SampleSource to the 32-bit float little-endian byte
// stream ebiten players consume.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return 0, io.EOF
	}
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// ebiten allows one audio context per process, so every player shares it.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio: context already running at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

type Player struct {
	player   *ebitaudio.Player
	reader   io.ReadCloser
	duration time.Duration
}

// NewPlayer prepares buf for playback at sampleRate.
func NewPlayer(sampleRate int, buf *pcm.Buffer) (*Player, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := NewStreamReader(NewBufferSource(buf))
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{
		player:   pl,
		reader:   reader,
		duration: time.Duration(buf.Len()) * time.Second / time.Duration(sampleRate),
	}, nil
}

func (p *Player) Play()  { p.player.Play() }
func (p *Player) Pause() { p.player.Pause() }
func (p *Player) IsPlaying() bool {
	return p.player.IsPlaying()
}

// Position returns the current playback position (what the listener actually hears).
func (p *Player) Position() time.Duration {
	return p.player.Position()
}

// Duration is the length of the buffer being played.
func (p *Player) Duration() time.Duration { return p.duration }

// Wait blocks until playback ends or Stop is called.
func (p *Player) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(20 * time.Millisecond)
	}
}

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
