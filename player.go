package fluentscore

import (
	"errors"
	"sync"
	"time"

	intaudio "github.com/cbegin/fluentscore-go/internal/audio"
)

// Player renders scores and plays them on the default audio device. The
// device is opened on the first Play.
type Player struct {
	mu      sync.Mutex
	opts    []Option
	rate    int
	current *intaudio.Player
}

// NewPlayer validates opts; they apply to every score the player renders.
func NewPlayer(opts ...Option) (*Player, error) {
	cfg, err := newRenderConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.engine != nil {
		return nil, errors.New("player builds an engine per score; use WithSoundFont instead of WithToneEngine")
	}
	return &Player{opts: opts, rate: cfg.sampleRate}, nil
}

// PlayText compiles text and plays it.
func (p *Player) PlayText(text string) error {
	s, err := Compile(text)
	if err != nil {
		return err
	}
	return p.Play(s)
}

// Play renders s and starts playing it, replacing anything already playing.
func (p *Player) Play(s *Score) error {
	buf, err := RenderScore(s, p.opts...)
	if err != nil {
		return err
	}
	return p.PlayBuffer(buf)
}

// PlayBuffer plays an already rendered buffer.
func (p *Player) PlayBuffer(buf *Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		if err := p.current.Stop(); err != nil {
			return err
		}
		p.current = nil
	}
	pl, err := intaudio.NewPlayer(p.rate, buf)
	if err != nil {
		return err
	}
	pl.Play()
	p.current = pl
	return nil
}

// Wait blocks until the current score finishes.
func (p *Player) Wait() {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()
	if current != nil {
		current.Wait()
	}
}

// Position reports how far playback has progressed.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return 0
	}
	return p.current.Position()
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	err := p.current.Stop()
	p.current = nil
	return err
}
